// Package trigger turns off the recurring job once results are published.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Lllllllleong/resultwatch/internal/config"
)

// Disabler stops the external scheduler from invoking the check again.
type Disabler interface {
	Disable(ctx context.Context) error
}

// GitHub disables a GitHub Actions workflow through the REST API.
type GitHub struct {
	client   *resty.Client
	repo     string
	workflow string
	enabled  bool
}

func NewGitHub(cfg config.GitHubConfig) *GitHub {
	client := resty.New()
	client.SetBaseURL(cfg.APIURL)
	client.SetTimeout(30 * time.Second)
	client.SetAuthToken(cfg.Token)
	client.SetHeader("Accept", "application/vnd.github+json")
	client.SetHeader("X-GitHub-Api-Version", "2022-11-28")
	return &GitHub{
		client:   client,
		repo:     cfg.Repository,
		workflow: cfg.WorkflowFile,
		enabled:  cfg.Enabled(),
	}
}

// Disable is a no-op without a token and repository.
func (g *GitHub) Disable(ctx context.Context) error {
	if !g.enabled {
		slog.Info("GitHub credentials not configured; leaving the workflow enabled.")
		return nil
	}

	path := fmt.Sprintf("/repos/%s/actions/workflows/%s/disable", g.repo, url.PathEscape(g.workflow))
	res, err := g.client.R().SetContext(ctx).Put(path)
	if err != nil {
		return fmt.Errorf("failed to disable workflow %s: %w", g.workflow, err)
	}
	if res.IsError() {
		return fmt.Errorf("failed to disable workflow %s: status %d: %s", g.workflow, res.StatusCode(), res.String())
	}
	slog.Info("Disabled recurring workflow.", "repository", g.repo, "workflow", g.workflow)
	return nil
}
