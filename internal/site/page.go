package site

import "context"

// Page is the narrow contract the navigator and download loop need from a
// browser tab. The live implementation lives in internal/browser; tests use
// the recorded-fixture double in internal/site/sitetest.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Exists probes for the element without waiting.
	Exists(ctx context.Context, loc Locator) (bool, error)
	// Click activates the element through a script-level element.click(),
	// which some of the site's postback links require.
	Click(ctx context.Context, loc Locator) error
	// Fill clears the input and types value into it.
	Fill(ctx context.Context, loc Locator, value string) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}
