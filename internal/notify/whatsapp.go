package notify

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Lllllllleong/resultwatch/internal/config"
)

// WhatsApp is a click-to-send text gateway (CallMeBot). It cannot carry
// attachments, so documents degrade to their caption.
type WhatsApp struct {
	client  *resty.Client
	gateway string
	phone   string
	apiKey  string
}

func NewWhatsApp(cfg config.WhatsAppConfig) *WhatsApp {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	return &WhatsApp{client: client, gateway: cfg.GatewayURL, phone: cfg.Phone, apiKey: cfg.APIKey}
}

func (w *WhatsApp) Name() string {
	return "whatsapp"
}

func (w *WhatsApp) SendText(ctx context.Context, msg string) error {
	res, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"phone":  w.phone,
			"text":   msg,
			"apikey": w.apiKey,
		}).
		Get(w.gateway)
	if err != nil {
		return redact(fmt.Sprintf("whatsapp gateway request failed: %v", err), w.apiKey)
	}
	if res.IsError() {
		return fmt.Errorf("whatsapp gateway returned status %d", res.StatusCode())
	}
	return nil
}

func (w *WhatsApp) SendDocument(ctx context.Context, path, caption string) error {
	return w.SendText(ctx, fmt.Sprintf("%s\n📎 %s", caption, filepath.Base(path)))
}
