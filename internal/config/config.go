package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Lllllllleong/resultwatch/internal/models"
	"github.com/Lllllllleong/resultwatch/internal/site"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is built once at process start and passed to every component.
// Nothing below cmd/ reads the environment.
type Config struct {
	Rolls models.RollRange

	DownloadDir    string
	MergedName     string
	ScreenshotPath string
	PageDumpPath   string

	Site    site.Adapter
	Browser BrowserConfig
	Timing  TimingConfig

	Telegram TelegramConfig
	WhatsApp WhatsAppConfig
	GitHub   GitHubConfig
	GCP      GCPConfig

	// MaxAttachmentBytes is the upload ceiling; larger files are announced
	// as text instead.
	MaxAttachmentBytes int64
}

type BrowserConfig struct {
	Width      int
	Height     int
	UserAgent  string
	ExecPath   string
	ShowWindow bool
}

type TimingConfig struct {
	// StepTimeout bounds the wait for each navigation element.
	StepTimeout time.Duration
	// RetapAfter is how long to wait for a click to take effect before
	// clicking again.
	RetapAfter time.Duration
	// PollInterval is the first backoff interval for element and download
	// polling.
	PollInterval time.Duration
	// DownloadSettle bounds the wait for a submitted roll's PDF to land.
	DownloadSettle time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID string
	APIURL string
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != ""
}

type WhatsAppConfig struct {
	Phone      string
	APIKey     string
	GatewayURL string
}

func (c WhatsAppConfig) Enabled() bool {
	return c.Phone != "" && c.APIKey != ""
}

type GitHubConfig struct {
	Token        string
	Repository   string
	WorkflowFile string
	APIURL       string
}

func (c GitHubConfig) Enabled() bool {
	return c.Token != "" && c.Repository != ""
}

type GCPConfig struct {
	ProjectID        string
	ArchiveBucket    string
	Collection       string
	WorkflowID       string
	WorkflowLocation string
	SkipIfPublished  bool
}

const (
	DefaultDownloadDir    = "4th Sem Results"
	DefaultMergedName     = "merged_all.pdf"
	DefaultScreenshotPath = "error_screenshot.png"
	DefaultPageDumpPath   = "error_page.html"
	DefaultTelegramAPI    = "https://api.telegram.org"
	DefaultWhatsAppAPI    = "https://api.callmebot.com/whatsapp.php"
	DefaultGitHubAPI      = "https://api.github.com"
	DefaultWorkflowFile   = "main.yml"
	DefaultMaxAttachment  = 49 * 1024 * 1024
)

// Default reproduces the settings the watcher was first run with.
func Default() Config {
	return Config{
		Rolls: models.RollRange{
			Prefix:   "24UECC",
			Start:    8002,
			End:      8069,
			Priority: 8022,
		},
		DownloadDir:    DefaultDownloadDir,
		MergedName:     DefaultMergedName,
		ScreenshotPath: DefaultScreenshotPath,
		PageDumpPath:   DefaultPageDumpPath,
		Site:           site.Default(),
		Browser: BrowserConfig{
			Width:  1920,
			Height: 1080,
		},
		Timing: TimingConfig{
			StepTimeout:    30 * time.Second,
			RetapAfter:     5 * time.Second,
			PollInterval:   250 * time.Millisecond,
			DownloadSettle: 5 * time.Second,
		},
		Telegram: TelegramConfig{APIURL: DefaultTelegramAPI},
		WhatsApp: WhatsAppConfig{GatewayURL: DefaultWhatsAppAPI},
		GitHub: GitHubConfig{
			WorkflowFile: DefaultWorkflowFile,
			APIURL:       DefaultGitHubAPI,
		},
		GCP: GCPConfig{
			Collection:       "runs",
			WorkflowLocation: "us-central1",
		},
		MaxAttachmentBytes: DefaultMaxAttachment,
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, the optional YAML file at path
// and the process environment, in increasing priority.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

func LoadWith(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := f.apply(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Rolls.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("%w: download dir must be set", ErrInvalid)
	}
	if c.MergedName == "" {
		return fmt.Errorf("%w: merged file name must be set", ErrInvalid)
	}
	if c.Site.HomeURL == "" || len(c.Site.Steps) == 0 {
		return fmt.Errorf("%w: site home url and steps must be set", ErrInvalid)
	}
	if c.Site.Marker.IsZero() || c.Site.RollInput.IsZero() || c.Site.Submit.IsZero() {
		return fmt.Errorf("%w: site marker, roll input and submit locators must be set", ErrInvalid)
	}
	t := c.Timing
	if t.StepTimeout <= 0 || t.RetapAfter <= 0 || t.PollInterval <= 0 || t.DownloadSettle <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalid)
	}
	if c.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("%w: max attachment size must be positive", ErrInvalid)
	}
	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("TELEGRAM_BOT_TOKEN", &cfg.Telegram.Token)
	str("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	str("TELEGRAM_API_URL", &cfg.Telegram.APIURL)
	str("WHATSAPP_PHONE", &cfg.WhatsApp.Phone)
	str("WHATSAPP_API_KEY", &cfg.WhatsApp.APIKey)
	str("WHATSAPP_GATEWAY_URL", &cfg.WhatsApp.GatewayURL)
	str("GITHUB_TOKEN", &cfg.GitHub.Token)
	str("GITHUB_REPOSITORY", &cfg.GitHub.Repository)
	str("GITHUB_WORKFLOW_FILE", &cfg.GitHub.WorkflowFile)
	str("GITHUB_API_URL", &cfg.GitHub.APIURL)
	str("ROLL_PREFIX", &cfg.Rolls.Prefix)
	str("DOWNLOAD_DIR", &cfg.DownloadDir)
	str("CHROME_PATH", &cfg.Browser.ExecPath)
	str("PROJECT_ID", &cfg.GCP.ProjectID)
	str("ARCHIVE_BUCKET", &cfg.GCP.ArchiveBucket)
	str("FIRESTORE_COLLECTION", &cfg.GCP.Collection)
	str("WORKFLOW_ID", &cfg.GCP.WorkflowID)
	str("WORKFLOW_LOCATION", &cfg.GCP.WorkflowLocation)

	for key, dst := range map[string]*int{
		"ROLL_START":    &cfg.Rolls.Start,
		"ROLL_END":      &cfg.Rolls.End,
		"ROLL_PRIORITY": &cfg.Rolls.Priority,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("SKIP_IF_PUBLISHED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SKIP_IF_PUBLISHED: %w", err)
		}
		cfg.GCP.SkipIfPublished = b
	}
	return nil
}
