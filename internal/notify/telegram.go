package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Lllllllleong/resultwatch/internal/config"
)

// Telegram talks to the Bot API: sendMessage for text, sendDocument
// (multipart) for files.
type Telegram struct {
	client *resty.Client
	token  string
	chatID string
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	client := resty.New()
	client.SetBaseURL(cfg.APIURL)
	client.SetTimeout(60 * time.Second)
	return &Telegram{client: client, token: cfg.Token, chatID: cfg.ChatID}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) SendText(ctx context.Context, msg string) error {
	var reply telegramReply
	res, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"text":    msg,
		}).
		SetResult(&reply).
		SetError(&reply).
		Post(t.method("sendMessage"))
	return t.check("sendMessage", res, err, reply)
}

func (t *Telegram) SendDocument(ctx context.Context, path, caption string) error {
	var reply telegramReply
	res, err := t.client.R().
		SetContext(ctx).
		SetFile("document", path).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"caption": caption,
		}).
		SetResult(&reply).
		SetError(&reply).
		Post(t.method("sendDocument"))
	return t.check("sendDocument", res, err, reply)
}

func (t *Telegram) method(name string) string {
	return "/bot" + t.token + "/" + name
}

func (t *Telegram) check(method string, res *resty.Response, err error, reply telegramReply) error {
	if err != nil {
		// transport errors quote the URL, which embeds the token
		return redact(fmt.Sprintf("telegram %s failed: %v", method, err), t.token)
	}
	if res.IsError() || !reply.OK {
		return fmt.Errorf("telegram %s failed: status %d: %s", method, res.StatusCode(), reply.Description)
	}
	return nil
}

func redact(msg, secret string) error {
	if secret != "" {
		msg = strings.ReplaceAll(msg, secret, "<redacted>")
	}
	return errors.New(msg)
}
