package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/models"
	"github.com/Lllllllleong/resultwatch/internal/site"
	"github.com/Lllllllleong/resultwatch/internal/trigger"
)

const (
	ActiveMessage      = "🚨 Result Link Active! Starting downloads..."
	FullResultCaption  = "Full Class Result:"
	MergeFailedMessage = "Downloads done, merge failed."
)

const cleanupTimeout = 15 * time.Second

// Session is a browser tab that must be closed when the run ends.
type Session interface {
	site.Page
	Close() error
}

// SessionFactory starts a browser whose downloads land in downloadDir.
type SessionFactory func(ctx context.Context, downloadDir string) (Session, error)

// Checker runs one end-to-end check: reach the lookup form, download every
// slip, merge, notify and turn off the recurring trigger.
type Checker struct {
	cfg      *config.Config
	sessions SessionFactory
	notifier Notifier
	disabler trigger.Disabler

	archiver Archiver
	ledger   Ledger
	handoff  Handoff
}

type Option func(*Checker)

func WithArchiver(a Archiver) Option { return func(c *Checker) { c.archiver = a } }
func WithLedger(l Ledger) Option     { return func(c *Checker) { c.ledger = l } }
func WithHandoff(h Handoff) Option   { return func(c *Checker) { c.handoff = h } }

func NewChecker(cfg *config.Config, sessions SessionFactory, notifier Notifier, disabler trigger.Disabler, opts ...Option) *Checker {
	c := &Checker{
		cfg:      cfg,
		sessions: sessions,
		notifier: notifier,
		disabler: disabler,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes one Check call.
type Result struct {
	RunID       string
	Outcome     models.RunOutcome
	Batch       models.BatchReport
	Merge       models.MergeResult
	ArchiveURI  string
	ExecutionID string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Response renders the result for the HTTP entry point.
func (r Result) Response(err error) models.CheckResponse {
	resp := models.CheckResponse{
		RunID:      r.RunID,
		Outcome:    r.Outcome.String(),
		Downloaded: r.Batch.Downloaded(),
		Skipped:    r.Batch.Skipped(),
		Merged:     len(r.Merge.Files),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Check performs one run. NotReady is not an error. A Failed outcome always
// comes with a non-nil error and leaves the trigger enabled.
func (c *Checker) Check(ctx context.Context) (res Result, err error) {
	res = Result{
		RunID:     uuid.NewString(),
		Outcome:   models.Failed,
		StartedAt: time.Now().UTC(),
	}
	logCtx := slog.With("runId", res.RunID)
	logCtx.Info("Starting result check.", "rolls", c.cfg.Rolls.Size(), "priority", c.cfg.Rolls.Label(c.cfg.Rolls.Priority))

	defer func() {
		res.FinishedAt = time.Now().UTC()
		if err != nil {
			res.Outcome = models.Failed
			logCtx.Error("Result check failed.", "error", err)
		}
		c.record(ctx, logCtx, res, err)
	}()

	if c.ledger != nil && c.cfg.GCP.SkipIfPublished {
		published, prior, err := c.ledger.Published(ctx)
		if err != nil {
			logCtx.Warn("Could not query earlier runs; checking anyway.", "error", err)
		} else if published {
			logCtx.Info("Results already published by an earlier run. Skipping.", "priorRunId", prior)
			c.disable(ctx, logCtx)
			res.Outcome = models.Success
			return res, nil
		}
	}

	if err := os.MkdirAll(c.cfg.DownloadDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create download dir: %w", err)
	}

	sess, err := c.sessions(ctx, c.cfg.DownloadDir)
	if err != nil {
		return res, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logCtx.Warn("Failed to close browser.", "error", cerr)
		}
	}()

	ready, err := NewNavigator(sess, c.cfg.Site, c.cfg.Timing).Reach(ctx)
	if err != nil {
		c.diagnose(ctx, logCtx, sess)
		return res, err
	}
	if !ready {
		logCtx.Info("Result not published yet.")
		res.Outcome = models.NotReady
		return res, nil
	}

	logCtx.Info("Result link is active.")
	c.notifier.Text(ctx, ActiveMessage)

	res.Batch = NewDownloader(sess, c.cfg.Site, c.cfg.DownloadDir, c.cfg.Timing, c.notifier).Run(ctx, c.cfg.Rolls)
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("run interrupted after %d downloads: %w", res.Batch.Downloaded(), err)
	}
	if res.Batch.Downloaded() == 0 {
		logCtx.Warn("Result link is active but no slips downloaded.", "skipped", res.Batch.Skipped())
	}

	merge, err := NewMerger(c.cfg.MergedName).Merge(c.cfg.DownloadDir)
	if err != nil || merge.Output == "" {
		logCtx.Error("Merge produced no output.", "error", err)
		c.notifier.Text(ctx, MergeFailedMessage)
	} else {
		res.Merge = merge
		c.notifier.Document(ctx, merge.Output, FullResultCaption)
		c.publish(ctx, logCtx, &res)
	}

	c.disable(ctx, logCtx)
	res.Outcome = models.Success
	logCtx.Info("Result check complete.",
		"downloaded", res.Batch.Downloaded(), "skipped", res.Batch.Skipped(), "merged", len(res.Merge.Files))
	return res, nil
}

// publish archives the merged file and hands it to the downstream workflow.
// Both are optional and neither can fail the run.
func (c *Checker) publish(ctx context.Context, logCtx *slog.Logger, res *Result) {
	if c.archiver == nil {
		return
	}
	uri, err := c.archiver.Archive(ctx, res.RunID, res.Merge.Output)
	if err != nil {
		logCtx.Error("Failed to archive merged result.", "error", err)
		return
	}
	res.ArchiveURI = uri
	logCtx.Info("Archived merged result.", "uri", uri)

	if c.handoff == nil {
		return
	}
	execID, err := c.handoff.Start(ctx, models.HandoffPayload{
		RunID:     res.RunID,
		MergedURI: uri,
		FileCount: len(res.Merge.Files),
	})
	if err != nil {
		logCtx.Error("Failed to hand off merged result.", "error", err)
		return
	}
	res.ExecutionID = execID
	logCtx.Info("Hand-off to workflow complete.", "execution", execID)
}

func (c *Checker) disable(ctx context.Context, logCtx *slog.Logger) {
	if c.disabler == nil {
		return
	}
	if err := c.disabler.Disable(ctx); err != nil {
		logCtx.Error("Failed to disable recurring trigger.", "error", err)
		return
	}
	logCtx.Info("Recurring trigger disabled.")
}

// diagnose saves a screenshot and the page source for post-mortem. It runs
// even when ctx is already cancelled.
func (c *Checker) diagnose(ctx context.Context, logCtx *slog.Logger, page site.Page) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if c.cfg.ScreenshotPath != "" {
		if png, err := page.Screenshot(dctx); err != nil {
			logCtx.Warn("Failed to capture screenshot.", "error", err)
		} else if err := os.WriteFile(c.cfg.ScreenshotPath, png, 0o644); err != nil {
			logCtx.Warn("Failed to save screenshot.", "error", err)
		} else {
			logCtx.Info("Saved error screenshot.", "path", c.cfg.ScreenshotPath)
		}
	}

	if c.cfg.PageDumpPath != "" {
		if html, err := page.HTML(dctx); err != nil {
			logCtx.Warn("Failed to capture page source.", "error", err)
		} else if err := os.WriteFile(c.cfg.PageDumpPath, []byte(html), 0o644); err != nil {
			logCtx.Warn("Failed to save page source.", "error", err)
		} else {
			logCtx.Info("Saved error page source.", "path", c.cfg.PageDumpPath)
		}
	}
}

func (c *Checker) record(ctx context.Context, logCtx *slog.Logger, res Result, runErr error) {
	if c.ledger == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	rec := models.RunRecord{
		RunID:       res.RunID,
		Outcome:     res.Outcome.String(),
		Downloaded:  res.Batch.Downloaded(),
		Skipped:     res.Batch.Skipped(),
		MergedFiles: len(res.Merge.Files),
		ArchiveURI:  res.ArchiveURI,
		ExecutionID: res.ExecutionID,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
	}
	if runErr != nil {
		rec.ErrorDetails = runErr.Error()
	}
	if err := c.ledger.Record(rctx, rec); err != nil {
		logCtx.Error("CRITICAL: Failed to write run record.", "error", err)
	}
}
