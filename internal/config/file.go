package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Lllllllleong/resultwatch/internal/site"
)

// fileConfig is the YAML shape of the config file. Every field is optional;
// set fields override the defaults. Secrets stay in the environment.
type fileConfig struct {
	Rolls *struct {
		Prefix   string `yaml:"prefix"`
		Start    *int   `yaml:"start"`
		End      *int   `yaml:"end"`
		Priority *int   `yaml:"priority"`
	} `yaml:"rolls"`

	DownloadDir    string `yaml:"download_dir"`
	MergedName     string `yaml:"merged_name"`
	ScreenshotPath string `yaml:"screenshot_path"`
	PageDumpPath   string `yaml:"page_dump_path"`

	Site *struct {
		HomeURL   string       `yaml:"home_url"`
		Steps     []fileStep   `yaml:"steps"`
		Marker    site.Locator `yaml:"marker"`
		RollInput site.Locator `yaml:"roll_input"`
		Submit    site.Locator `yaml:"submit"`
	} `yaml:"site"`

	Browser *struct {
		Width      int    `yaml:"width"`
		Height     int    `yaml:"height"`
		UserAgent  string `yaml:"user_agent"`
		ShowWindow bool   `yaml:"show_window"`
	} `yaml:"browser"`

	Timing *struct {
		StepTimeout    string `yaml:"step_timeout"`
		RetapAfter     string `yaml:"retap_after"`
		PollInterval   string `yaml:"poll_interval"`
		DownloadSettle string `yaml:"download_settle"`
	} `yaml:"timing"`

	MaxAttachmentMB int64 `yaml:"max_attachment_mb"`

	GCP *struct {
		ArchiveBucket    string `yaml:"archive_bucket"`
		Collection       string `yaml:"collection"`
		WorkflowID       string `yaml:"workflow_id"`
		WorkflowLocation string `yaml:"workflow_location"`
		SkipIfPublished  bool   `yaml:"skip_if_published"`
	} `yaml:"gcp"`
}

type fileStep struct {
	Name     string       `yaml:"name"`
	Locator  site.Locator `yaml:"locator"`
	Optional bool         `yaml:"optional"`
	Gate     bool         `yaml:"gate"`
	Settle   string       `yaml:"settle"`
}

func readFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return &f, nil
}

func (f *fileConfig) apply(cfg *Config) error {
	if r := f.Rolls; r != nil {
		setStr(&cfg.Rolls.Prefix, r.Prefix)
		setInt(&cfg.Rolls.Start, r.Start)
		setInt(&cfg.Rolls.End, r.End)
		setInt(&cfg.Rolls.Priority, r.Priority)
	}

	setStr(&cfg.DownloadDir, f.DownloadDir)
	setStr(&cfg.MergedName, f.MergedName)
	setStr(&cfg.ScreenshotPath, f.ScreenshotPath)
	setStr(&cfg.PageDumpPath, f.PageDumpPath)

	if s := f.Site; s != nil {
		setStr(&cfg.Site.HomeURL, s.HomeURL)
		if len(s.Steps) > 0 {
			steps := make([]site.Step, 0, len(s.Steps))
			for i, fs := range s.Steps {
				if fs.Locator.IsZero() {
					return fmt.Errorf("site.steps[%d]: locator must be set", i)
				}
				settle, err := parseDuration(fs.Settle)
				if err != nil {
					return fmt.Errorf("site.steps[%d].settle: %w", i, err)
				}
				steps = append(steps, site.Step{
					Name:     fs.Name,
					Locator:  fs.Locator,
					Optional: fs.Optional,
					Gate:     fs.Gate,
					Settle:   settle,
				})
			}
			cfg.Site.Steps = steps
		}
		if !s.Marker.IsZero() {
			cfg.Site.Marker = s.Marker
		}
		if !s.RollInput.IsZero() {
			cfg.Site.RollInput = s.RollInput
		}
		if !s.Submit.IsZero() {
			cfg.Site.Submit = s.Submit
		}
	}

	if b := f.Browser; b != nil {
		if b.Width > 0 {
			cfg.Browser.Width = b.Width
		}
		if b.Height > 0 {
			cfg.Browser.Height = b.Height
		}
		setStr(&cfg.Browser.UserAgent, b.UserAgent)
		cfg.Browser.ShowWindow = b.ShowWindow
	}

	if t := f.Timing; t != nil {
		for name, pair := range map[string]struct {
			raw string
			dst *time.Duration
		}{
			"step_timeout":    {t.StepTimeout, &cfg.Timing.StepTimeout},
			"retap_after":     {t.RetapAfter, &cfg.Timing.RetapAfter},
			"poll_interval":   {t.PollInterval, &cfg.Timing.PollInterval},
			"download_settle": {t.DownloadSettle, &cfg.Timing.DownloadSettle},
		} {
			d, err := parseDuration(pair.raw)
			if err != nil {
				return fmt.Errorf("timing.%s: %w", name, err)
			}
			if d > 0 {
				*pair.dst = d
			}
		}
	}

	if f.MaxAttachmentMB > 0 {
		cfg.MaxAttachmentBytes = f.MaxAttachmentMB * 1024 * 1024
	}

	if g := f.GCP; g != nil {
		setStr(&cfg.GCP.ArchiveBucket, g.ArchiveBucket)
		setStr(&cfg.GCP.Collection, g.Collection)
		setStr(&cfg.GCP.WorkflowID, g.WorkflowID)
		setStr(&cfg.GCP.WorkflowLocation, g.WorkflowLocation)
		cfg.GCP.SkipIfPublished = g.SkipIfPublished
	}
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
