// Package zentao fetches the user's open tasks and bugs from a ZenTao
// instance by scraping its listing pages with the ambient session cookies.
package zentao

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/logging"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/source"
)

const (
	// pagerRows forces 500-row pages so the listings never paginate.
	pagerRows = "500"

	taskPagePath        = "/my-task.html"
	activeBugPagePath   = "/my-bug.html"
	resolvedBugPagePath = "/my-bug-resolvedBy.html"
)

var acceptHTML = map[string]string{
	"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
}

// Source fetches tracker data from a ZenTao instance.
type Source struct {
	client *source.Client
	cfg    config.SourceConfig
	log    zerolog.Logger
}

var _ source.Source = (*Source)(nil)

// New creates the ZenTao source.
func New(client *source.Client, cfg config.SourceConfig) *Source {
	return &Source{
		client: client,
		cfg:    cfg,
		log:    logging.Component("zentao"),
	}
}

func (s *Source) Key() string { return model.SourceZentao }

func (s *Source) Enabled() bool { return s.cfg.IsEnabled() }

// Fetch runs the two-step protocol: pre-set the pager cookies on the ZenTao
// origin, then pull the task page, the active-bug page, and the
// resolved-in-range bug page. Bugs merge active-first with
// provenance-assigned status.
func (s *Source) Fetch(ctx context.Context) (model.Payload, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}

	taskHTML, err := s.fetchPage(ctx, taskPagePath)
	if err != nil {
		return nil, err
	}
	tasks := parseTasks(taskHTML, s.cfg.BaseURL)

	activeHTML, err := s.fetchPage(ctx, activeBugPagePath)
	if err != nil {
		return nil, err
	}
	active := parseBugs(activeHTML, s.cfg.BaseURL, model.DefectActive)

	resolvedHTML, err := s.fetchPage(ctx, resolvedBugPagePath)
	if err != nil {
		return nil, err
	}
	resolved := parseBugs(resolvedHTML, s.cfg.BaseURL, model.DefectResolved)

	s.log.Debug().
		Int("tasks", len(tasks)).
		Int("active_bugs", len(active)).
		Int("resolved_bugs", len(resolved)).
		Msg("zentao fetch complete")

	return &model.TrackerData{
		Tasks: tasks,
		Bugs:  append(active, resolved...),
	}, nil
}

// prepare pre-sets the listing pager cookies, scoped to the ZenTao origin.
func (s *Source) prepare() error {
	for _, name := range []string{"pagerMyTask", "pagerMyBug"} {
		if err := s.client.SetCookie(s.cfg.BaseURL, name, pagerRows); err != nil {
			return fmt.Errorf("set pager cookie: %w", err)
		}
	}
	return nil
}

func (s *Source) fetchPage(ctx context.Context, path string) (string, error) {
	resp, err := s.client.Get(ctx, s.cfg.BaseURL+path, acceptHTML)
	if err != nil {
		return "", &source.NetError{SourceKey: s.Key(), Err: err}
	}

	if err := source.Classify(resp, source.ClassifyOptions{
		SourceKey:      s.Key(),
		LoginURL:       s.cfg.BaseURL,
		LoginPathHints: []string{"user-login"},
	}); err != nil {
		return "", err
	}

	return string(resp.Body), nil
}
