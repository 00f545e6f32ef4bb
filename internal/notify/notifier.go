package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/resultwatch/internal/config"
)

// Channel is one delivery mechanism. Implementations return transport and
// API errors; the Notifier decides what to do with them.
type Channel interface {
	Name() string
	SendText(ctx context.Context, msg string) error
	SendDocument(ctx context.Context, path, caption string) error
}

// Notifier delivers to every configured channel. Delivery is best effort:
// failures are logged and never returned, so a broken channel cannot abort
// a run. With no channels every call is a no-op.
type Notifier struct {
	channels []Channel
	maxBytes int64
}

func New(maxBytes int64, channels ...Channel) *Notifier {
	return &Notifier{channels: channels, maxBytes: maxBytes}
}

// FromConfig wires the channels whose credentials are present.
func FromConfig(cfg *config.Config) *Notifier {
	var channels []Channel
	if cfg.Telegram.Enabled() {
		channels = append(channels, NewTelegram(cfg.Telegram))
	}
	if cfg.WhatsApp.Enabled() {
		channels = append(channels, NewWhatsApp(cfg.WhatsApp))
	}
	if len(channels) == 0 {
		slog.Info("No notification channels configured; notifications are disabled.")
	}
	return New(cfg.MaxAttachmentBytes, channels...)
}

func (n *Notifier) Enabled() bool {
	return len(n.channels) > 0
}

// Text sends msg to every channel.
func (n *Notifier) Text(ctx context.Context, msg string) {
	n.each(ctx, func(ctx context.Context, ch Channel) error {
		return ch.SendText(ctx, msg)
	})
}

// Document sends the file at path with caption. Files above the attachment
// ceiling are never uploaded; a text notice is sent instead.
func (n *Notifier) Document(ctx context.Context, path, caption string) {
	if !n.Enabled() {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("Attachment is not readable; sending text instead.", "path", path, "error", err)
		n.Text(ctx, fmt.Sprintf("%s\n(%s could not be attached)", caption, filepath.Base(path)))
		return
	}
	if info.Size() > n.maxBytes {
		slog.Warn("Attachment exceeds upload ceiling; sending text instead.",
			"path", path, "size", info.Size(), "limit", n.maxBytes)
		n.Text(ctx, OversizeNotice(filepath.Base(path), info.Size(), n.maxBytes, caption))
		return
	}

	n.each(ctx, func(ctx context.Context, ch Channel) error {
		return ch.SendDocument(ctx, path, caption)
	})
}

// OversizeNotice is the text that replaces a too-large attachment.
func OversizeNotice(name string, size, limit int64, caption string) string {
	return fmt.Sprintf("%s\n⚠️ %s is %.1f MB, over the %.0f MB upload limit. Fetch it from the run artifacts.",
		caption, name, megabytes(size), megabytes(limit))
}

func megabytes(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

func (n *Notifier) each(ctx context.Context, send func(context.Context, Channel) error) {
	var g errgroup.Group
	for _, ch := range n.channels {
		g.Go(func() error {
			if err := send(ctx, ch); err != nil {
				slog.Warn("Notification failed.", "channel", ch.Name(), "error", err)
				return nil
			}
			slog.Debug("Notification sent.", "channel", ch.Name())
			return nil
		})
	}
	_ = g.Wait()
}
