package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"github.com/Lllllllleong/resultwatch/internal/site"
)

// DesktopUserAgent keeps the portal from serving its mobile layout.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Options struct {
	DownloadDir string
	Width       int
	Height      int
	UserAgent   string
	// ExecPath overrides chromedp's Chrome discovery.
	ExecPath string
	// ShowWindow runs a visible browser, useful when debugging locators.
	ShowWindow bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1920
	}
	if o.Height <= 0 {
		o.Height = 1080
	}
	if o.UserAgent == "" {
		o.UserAgent = DesktopUserAgent
	}
	return o
}

// Session owns one headless Chrome process. Callers must Close it on every
// exit path.
type Session struct {
	ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
	profileDir  string
}

// New starts Chrome and binds downloads to opts.DownloadDir.
func New(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	downloadDir, err := filepath.Abs(opts.DownloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download dir: %w", err)
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	profileDir, err := os.MkdirTemp("", "resultwatch-chrome-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create browser profile: %w", err)
	}
	if err := writePreferences(profileDir, downloadDir); err != nil {
		_ = os.RemoveAll(profileDir)
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.ShowWindow),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.UserDataDir(profileDir),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
		profileDir:  profileDir,
	}

	// The first Run launches the browser process.
	err = chromedp.Run(tabCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	slog.Info("Browser session started.", "downloadDir", downloadDir, "width", opts.Width, "height", opts.Height)
	return s, nil
}

// Close terminates the browser process. It is safe to call more than once.
func (s *Session) Close() error {
	if s.cancelTab != nil {
		s.cancelTab()
		s.cancelTab = nil
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
		s.cancelAlloc = nil
	}
	if s.profileDir != "" {
		dir := s.profileDir
		s.profileDir = ""
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove browser profile: %w", err)
		}
	}
	return nil
}

// writePreferences seeds the profile so PDFs served inline are saved to
// downloadDir instead of opening in Chrome's viewer.
func writePreferences(profileDir, downloadDir string) error {
	prefs := map[string]any{
		"plugins": map[string]any{
			"always_open_pdf_externally": true,
		},
		"download": map[string]any{
			"default_directory":   downloadDir,
			"prompt_for_download": false,
		},
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode browser preferences: %w", err)
	}
	dir := filepath.Join(profileDir, "Default")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create browser profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Preferences"), b, 0o600); err != nil {
		return fmt.Errorf("failed to write browser preferences: %w", err)
	}
	return nil
}

// run executes actions on the tab while honouring the caller's deadline and
// cancellation. Cancelling a derived context only aborts the actions, the
// tab itself stays open.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

const existsJS = `document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null`

func (s *Session) Exists(ctx context.Context, loc site.Locator) (bool, error) {
	var found bool
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(existsJS, jsString(loc.XPath())), &found))
	return found, err
}

// Plain pointer clicks on the portal's postback links are unreliable, so the
// element's own click() is invoked instead.
const clickJS = `(function() {
	const n = document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (n === null) { return false; }
	n.scrollIntoView({block: "center"});
	n.click();
	return true;
})()`

func (s *Session) Click(ctx context.Context, loc site.Locator) error {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(clickJS, jsString(loc.XPath())), &clicked)); err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	if !clicked {
		return fmt.Errorf("failed to click %s: element not found", loc)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, loc site.Locator, value string) error {
	sel := loc.XPath()
	err := s.run(ctx,
		chromedp.Clear(sel, chromedp.BySearch),
		chromedp.SendKeys(sel, value, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", loc, err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page markup: %w", err)
	}
	return html, nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

var _ site.Page = (*Session)(nil)
