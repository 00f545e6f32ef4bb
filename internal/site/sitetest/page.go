// Package sitetest provides a recorded-fixture double for site.Page.
//
// Recorded pages are plain HTML. Three data attributes drive transitions:
// data-goto="<page>" loads another page when the element is clicked,
// data-taps="N" swallows clicks until the Nth one, and data-submit="<id>"
// hands the value filled into input <id> to OnSubmit.
package sitetest

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/Lllllllleong/resultwatch/internal/site"
)

//go:embed recorded/*.html
var recorded embed.FS

var ErrNoElement = errors.New("no element matches locator")

type Page struct {
	// OnSubmit is called with the submitted input value when a data-submit
	// element is clicked. Its error is returned from Click.
	OnSubmit func(value string) error
	// NavigateErr, when set, fails every Navigate call.
	NavigateErr error

	mu      sync.Mutex
	pages   map[string]string
	home    string
	current string
	doc     *goquery.Document
	values  map[string]string
	taps    map[string]int
	clicks  []string
}

// New builds a fixture from named HTML pages; home is loaded on Navigate.
func New(home string, pages map[string]string) *Page {
	p := &Page{
		pages:  map[string]string{},
		home:   home,
		values: map[string]string{},
		taps:   map[string]int{},
	}
	for name, html := range pages {
		p.pages[name] = html
	}
	return p
}

// Recorded returns a fixture of the results portal with the ECC III result
// published.
func Recorded() *Page {
	entries, err := recorded.ReadDir("recorded")
	if err != nil {
		panic(err)
	}
	pages := map[string]string{}
	for _, e := range entries {
		b, err := recorded.ReadFile(path.Join("recorded", e.Name()))
		if err != nil {
			panic(err)
		}
		pages[strings.TrimSuffix(e.Name(), ".html")] = string(b)
	}
	return New("home", pages)
}

// With replaces (or adds) a page and returns the fixture for chaining.
func (p *Page) With(name, html string) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[name] = html
	return p
}

// Alias makes name serve the same HTML as target.
func (p *Page) Alias(name, target string) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[name] = p.pages[target]
	return p
}

// Current is the name of the loaded page.
func (p *Page) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Clicks lists the text (or id) of every clicked element in order.
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Value returns what was last filled into the input with the given id.
func (p *Page) Value(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[id]
}

func (p *Page) load(name string) error {
	html, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("no recorded page %q", name)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse recorded page %q: %w", name, err)
	}
	p.current = name
	p.doc = doc
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	return p.load(p.home)
}

func (p *Page) Exists(ctx context.Context, loc site.Locator) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return false, nil
	}
	return loc.Find(p.doc).Length() > 0, nil
}

func (p *Page) Click(ctx context.Context, loc site.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	sel, err := p.find(loc)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	label := strings.TrimSpace(sel.Text())
	if label == "" {
		label = sel.AttrOr("id", "")
	}
	p.clicks = append(p.clicks, label)

	key := p.current + "|" + loc.String()
	p.taps[key]++
	if need, err := strconv.Atoi(sel.AttrOr("data-taps", "1")); err == nil && p.taps[key] < need {
		p.mu.Unlock()
		return nil
	}

	if target, ok := sel.Attr("data-goto"); ok {
		err := p.load(target)
		p.mu.Unlock()
		return err
	}

	inputID, submits := sel.Attr("data-submit")
	value := p.values[inputID]
	onSubmit := p.OnSubmit
	p.mu.Unlock()

	if submits && onSubmit != nil {
		return onSubmit(value)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, loc site.Locator, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sel, err := p.find(loc)
	if err != nil {
		return err
	}
	p.values[sel.AttrOr("id", loc.String())] = value
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []byte("screenshot:" + p.current), nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages[p.current], nil
}

func (p *Page) find(loc site.Locator) (*goquery.Selection, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("%w: %s (no page loaded)", ErrNoElement, loc)
	}
	sel := loc.Find(p.doc)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, loc)
	}
	return sel, nil
}

var _ site.Page = (*Page)(nil)
