package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/models"
	"github.com/Lllllllleong/resultwatch/internal/site"
)

const PersonalResultCaption = "Here is your personal result! 👇"

// Notifier is the delivery surface the run needs. Implementations swallow
// their own failures.
type Notifier interface {
	Text(ctx context.Context, msg string)
	Document(ctx context.Context, path, caption string)
}

// Downloader submits every roll number to the lookup form and waits for each
// result slip to land in the download directory.
type Downloader struct {
	page     site.Page
	adapter  site.Adapter
	dir      string
	timing   config.TimingConfig
	notifier Notifier
}

func NewDownloader(page site.Page, adapter site.Adapter, dir string, timing config.TimingConfig, notifier Notifier) *Downloader {
	return &Downloader{
		page:     page,
		adapter:  adapter,
		dir:      dir,
		timing:   timing,
		notifier: notifier,
	}
}

// Run processes the priority roll first, then the rest of the range in
// ascending order. A failing roll is recorded as skipped and the loop moves
// on; only context cancellation stops it early.
func (d *Downloader) Run(ctx context.Context, rolls models.RollRange) models.BatchReport {
	seq := rolls.Sequence()
	report := models.BatchReport{Items: make([]models.ItemResult, 0, len(seq))}

	for i, roll := range seq {
		if err := ctx.Err(); err != nil {
			for _, rest := range seq[i:] {
				report.Items = append(report.Items, models.ItemResult{
					Roll:   rest,
					Label:  rolls.Label(rest),
					Status: models.ItemSkipped,
					Reason: err.Error(),
				})
			}
			break
		}

		item := d.fetch(ctx, roll, rolls.Label(roll))
		report.Items = append(report.Items, item)

		if item.Status == models.ItemSkipped {
			slog.Warn("Skipped roll.", "roll", item.Label, "reason", item.Reason)
		} else {
			slog.Info("Downloaded roll.", "roll", item.Label, "file", item.File)
		}

		if roll == rolls.Priority && item.Status == models.ItemDownloaded {
			d.sendPersonal(ctx, item.File)
		}
	}

	slog.Info("Download loop finished.", "downloaded", report.Downloaded(), "skipped", report.Skipped())
	return report
}

func (d *Downloader) fetch(ctx context.Context, roll int, label string) models.ItemResult {
	item := models.ItemResult{Roll: roll, Label: label, Status: models.ItemSkipped}

	before, partial, err := listPDFs(d.dir)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	seen := make(map[string]bool, len(before)+len(partial))
	for _, f := range before {
		seen[f.Name] = true
	}
	// partials left behind by a killed browser never complete
	for _, name := range partial {
		seen[name] = true
	}

	// A lookup that lands on an error page leaves no roll input behind;
	// bound the browser calls so that roll is skipped instead of hanging.
	stepCtx, cancel := context.WithTimeout(ctx, d.timing.StepTimeout)
	defer cancel()

	if err := d.page.Fill(stepCtx, d.adapter.RollInput, label); err != nil {
		item.Reason = err.Error()
		return item
	}
	if err := d.page.Click(stepCtx, d.adapter.Submit); err != nil {
		item.Reason = err.Error()
		return item
	}

	file, err := d.awaitDownload(ctx, seen)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	if file == "" {
		item.Reason = fmt.Sprintf("no download observed within %s", d.timing.DownloadSettle)
		return item
	}

	item.Status = models.ItemDownloaded
	item.File = file
	return item
}

// awaitDownload waits until a PDF not in seen exists and no partial download
// started since the snapshot remains, returning the newest such file.
func (d *Downloader) awaitDownload(ctx context.Context, seen map[string]bool) (string, error) {
	var file string
	_, err := poll(ctx, d.timing.PollInterval, d.timing.DownloadSettle, func(context.Context) (bool, error) {
		files, partial, err := listPDFs(d.dir)
		if err != nil {
			return false, err
		}
		for _, name := range partial {
			if !seen[name] {
				return false, nil
			}
		}
		var fresh []pdfFile
		for _, f := range files {
			if !seen[f.Name] {
				fresh = append(fresh, f)
			}
		}
		if len(fresh) == 0 {
			return false, nil
		}
		file = newestOf(fresh)
		return true, nil
	})
	return file, err
}

func (d *Downloader) sendPersonal(ctx context.Context, file string) {
	path := filepath.Join(d.dir, file)
	slog.Info("Forwarding priority result.", "file", file)
	d.notifier.Document(ctx, path, PersonalResultCaption)
}
