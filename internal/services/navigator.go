package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/site"
)

var ErrElementNotFound = errors.New("element not found")

// Navigator walks from the portal's home page to the per-roll lookup form.
type Navigator struct {
	page    site.Page
	adapter site.Adapter
	timing  config.TimingConfig
}

func NewNavigator(page site.Page, adapter site.Adapter, timing config.TimingConfig) *Navigator {
	return &Navigator{page: page, adapter: adapter, timing: timing}
}

// Reach returns true once the readiness marker is on the page. A missing gate
// element or marker means the result is not out yet and is reported as
// (false, nil). A missing required element is an error: the page structure is
// not what the adapter expects.
func (n *Navigator) Reach(ctx context.Context) (bool, error) {
	logCtx := slog.With("homeUrl", n.adapter.HomeURL)

	if err := n.open(ctx); err != nil {
		return false, fmt.Errorf("failed to open %s: %w", n.adapter.HomeURL, err)
	}

	steps := n.adapter.Steps
	for i, step := range steps {
		logCtx.Info("Looking for navigation element.", "step", step.Name)
		found, err := n.waitFor(ctx, step.Locator)
		if err != nil {
			return false, err
		}
		if !found {
			switch {
			case step.Optional:
				logCtx.Info("Optional element not present, proceeding.", "step", step.Name)
				continue
			case step.Gate:
				logCtx.Info("Result link not active yet.", "step", step.Name)
				return false, nil
			default:
				return false, fmt.Errorf("step %q: %w: %s", step.Name, ErrElementNotFound, step.Locator)
			}
		}

		if err := n.activate(ctx, step, n.expectAfter(i)); err != nil {
			return false, err
		}
		if err := pause(ctx, step.Settle); err != nil {
			return false, err
		}
	}

	ready, err := n.waitFor(ctx, n.adapter.Marker)
	if err != nil {
		return false, err
	}
	if !ready {
		logCtx.Info("Lookup form did not appear.", "marker", n.adapter.Marker.String())
		return false, nil
	}
	logCtx.Info("Lookup form is ready.")
	return true, nil
}

func (n *Navigator) open(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, n.timing.StepTimeout)
	defer cancel()
	return n.page.Navigate(navCtx, n.adapter.HomeURL)
}

// click bounds a single activation by the step timeout.
func (n *Navigator) click(ctx context.Context, step site.Step) error {
	clickCtx, cancel := context.WithTimeout(ctx, n.timing.StepTimeout)
	defer cancel()
	return n.page.Click(clickCtx, step.Locator)
}

// expectAfter lists the elements that prove step i took effect: every
// following step up to and including the first required one, or the
// readiness marker after the last required step.
func (n *Navigator) expectAfter(i int) []site.Locator {
	var expect []site.Locator
	for _, next := range n.adapter.Steps[i+1:] {
		expect = append(expect, next.Locator)
		if !next.Optional {
			return expect
		}
	}
	return append(expect, n.adapter.Marker)
}

// activate clicks the step's element. Some postback links ignore the first
// click, so when none of the expected elements show up within RetapAfter and
// the element is still there, it is clicked once more.
func (n *Navigator) activate(ctx context.Context, step site.Step, expect []site.Locator) error {
	if err := n.click(ctx, step); err != nil {
		return fmt.Errorf("step %q: %w", step.Name, err)
	}

	moved, err := poll(ctx, n.timing.PollInterval, n.timing.RetapAfter, func(ctx context.Context) (bool, error) {
		return n.anyExists(ctx, expect)
	})
	if err != nil || moved {
		return err
	}

	still, err := n.page.Exists(ctx, step.Locator)
	if err != nil || !still {
		// the page changed, just not into what we expected; the next wait
		// decides what that means
		return nil
	}
	slog.Info("Click had no visible effect, tapping again.", "step", step.Name)
	if err := n.click(ctx, step); err != nil {
		return fmt.Errorf("step %q: second click: %w", step.Name, err)
	}
	return nil
}

func (n *Navigator) anyExists(ctx context.Context, locs []site.Locator) (bool, error) {
	for _, loc := range locs {
		ok, err := n.page.Exists(ctx, loc)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (n *Navigator) waitFor(ctx context.Context, loc site.Locator) (bool, error) {
	return poll(ctx, n.timing.PollInterval, n.timing.StepTimeout, func(ctx context.Context) (bool, error) {
		return n.page.Exists(ctx, loc)
	})
}
