package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vals[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWith("", env(nil))
	require.NoError(t, err)

	require.Equal(t, "24UECC", cfg.Rolls.Prefix)
	require.Equal(t, 8002, cfg.Rolls.Start)
	require.Equal(t, 8069, cfg.Rolls.End)
	require.Equal(t, 8022, cfg.Rolls.Priority)
	require.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
	require.Equal(t, DefaultMergedName, cfg.MergedName)
	require.Equal(t, int64(49*1024*1024), cfg.MaxAttachmentBytes)
	require.Equal(t, 30*time.Second, cfg.Timing.StepTimeout)

	require.False(t, cfg.Telegram.Enabled())
	require.False(t, cfg.WhatsApp.Enabled())
	require.False(t, cfg.GitHub.Enabled())
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadWith(filepath.Join("testdata", "watch.yaml"), env(nil))
	require.NoError(t, err)

	require.Equal(t, "23UCSE", cfg.Rolls.Prefix)
	require.Equal(t, 1017, cfg.Rolls.Priority)
	require.Equal(t, "results/odd-2024", cfg.DownloadDir)
	require.Equal(t, "class.pdf", cfg.MergedName)
	require.Equal(t, "https://example.edu/", cfg.Site.HomeURL)

	require.Len(t, cfg.Site.Steps, 3)
	require.True(t, cfg.Site.Steps[1].Optional)
	require.Equal(t, 1500*time.Millisecond, cfg.Site.Steps[1].Settle)
	require.True(t, cfg.Site.Steps[2].Gate)
	require.Equal(t, []string{"III", "3rd"}, cfg.Site.Steps[2].Locator.TextAny)

	// untouched locators keep their defaults
	require.Equal(t, "txtRollNo", cfg.Site.Marker.ID)

	require.Equal(t, 45*time.Second, cfg.Timing.StepTimeout)
	require.Equal(t, 3*time.Second, cfg.Timing.DownloadSettle)
	require.Equal(t, 5*time.Second, cfg.Timing.RetapAfter)
	require.Equal(t, int64(20*1024*1024), cfg.MaxAttachmentBytes)
	require.Equal(t, "results-archive", cfg.GCP.ArchiveBucket)
	require.True(t, cfg.GCP.SkipIfPublished)
}

func TestEnvOverridesFile(t *testing.T) {
	cfg, err := LoadWith(filepath.Join("testdata", "watch.yaml"), env(map[string]string{
		"ROLL_PRIORITY":      "1001",
		"TELEGRAM_BOT_TOKEN": "123:abc",
		"TELEGRAM_CHAT_ID":   "42",
		"GITHUB_TOKEN":       "ghp_x",
		"GITHUB_REPOSITORY":  "someone/watch",
		"SKIP_IF_PUBLISHED":  "false",
	}))
	require.NoError(t, err)

	require.Equal(t, 1001, cfg.Rolls.Priority)
	require.True(t, cfg.Telegram.Enabled())
	require.True(t, cfg.GitHub.Enabled())
	require.Equal(t, DefaultWorkflowFile, cfg.GitHub.WorkflowFile)
	require.False(t, cfg.GCP.SkipIfPublished)
}

func TestInvalid(t *testing.T) {
	_, err := LoadWith(filepath.Join("testdata", "invalid_timing.yaml"), env(nil))
	require.ErrorIs(t, err, ErrInvalid)
	require.Contains(t, err.Error(), "timing.step_timeout")

	_, err = LoadWith(filepath.Join("testdata", "invalid_range.yaml"), env(nil))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = LoadWith("", env(map[string]string{"ROLL_START": "abc"}))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = LoadWith(filepath.Join("testdata", "missing.yaml"), env(nil))
	require.Error(t, err)
}
