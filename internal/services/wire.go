package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/resultwatch/internal/browser"
	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/gcp"
	"github.com/Lllllllleong/resultwatch/internal/notify"
	"github.com/Lllllllleong/resultwatch/internal/trigger"
)

// BrowserSessions starts headless Chrome sessions configured from cfg.
func BrowserSessions(cfg config.BrowserConfig) SessionFactory {
	return func(ctx context.Context, downloadDir string) (Session, error) {
		sess, err := browser.New(ctx, browser.Options{
			DownloadDir: downloadDir,
			Width:       cfg.Width,
			Height:      cfg.Height,
			UserAgent:   cfg.UserAgent,
			ExecPath:    cfg.ExecPath,
			ShowWindow:  cfg.ShowWindow,
		})
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

// NewResultChecker wires a Checker from configuration. GCP collaborators are
// created only when their settings are present. The returned func releases
// them.
func NewResultChecker(ctx context.Context, cfg *config.Config) (*Checker, func(), error) {
	var (
		opts    []Option
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("Failed to close client.", "error", err)
			}
		}
	}

	if cfg.GCP.ProjectID != "" {
		fs, err := gcp.NewFirestoreClient(ctx, cfg.GCP.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, fs.Close)
		opts = append(opts, WithLedger(NewFirestoreLedger(fs, cfg.GCP.Collection)))
	}

	if cfg.GCP.ArchiveBucket != "" {
		sc, err := storage.NewClient(ctx)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create Storage client: %w", err)
		}
		closers = append(closers, sc.Close)
		opts = append(opts, WithArchiver(NewGCSArchiver(sc, cfg.GCP.ArchiveBucket)))
	}

	if cfg.GCP.ProjectID != "" && cfg.GCP.WorkflowID != "" {
		ec, err := gcp.NewExecutionsClient(ctx)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, ec.Close)
		opts = append(opts, WithHandoff(NewWorkflowHandoff(ec, cfg.GCP.ProjectID, cfg.GCP.WorkflowLocation, cfg.GCP.WorkflowID)))
	}

	checker := NewChecker(cfg,
		BrowserSessions(cfg.Browser),
		notify.FromConfig(cfg),
		trigger.NewGitHub(cfg.GitHub),
		opts...,
	)
	return checker, closeAll, nil
}
