// Package gitlab fetches the user's activity feed from a GitLab instance
// and condenses it into commit and merge-request counts for the selected
// date range.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/logging"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/source"
)

// activityLimit caps how many events the feed returns per fetch.
const activityLimit = 15

// envelope is the JSON wrapper the activity endpoint returns; the events
// themselves are server-rendered HTML inside it.
type envelope struct {
	Count int    `json:"count"`
	HTML  string `json:"html"`
}

// Source fetches commit activity from a GitLab instance.
type Source struct {
	client *source.Client
	cfg    config.SourceConfig
	now    func() time.Time
	log    zerolog.Logger
}

var _ source.Source = (*Source)(nil)

// New creates the GitLab source. The clock is injectable for tests.
func New(client *source.Client, cfg config.SourceConfig, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}
	return &Source{
		client: client,
		cfg:    cfg,
		now:    now,
		log:    logging.Component("gitlab"),
	}
}

func (s *Source) Key() string { return model.SourceGitLab }

func (s *Source) Enabled() bool { return s.cfg.IsEnabled() }

// Fetch pulls the activity feed and filters it to the configured range.
// A 404 on the feed means the session is gone: GitLab hides user pages
// from unauthenticated visitors instead of answering 401.
func (s *Source) Fetch(ctx context.Context) (model.Payload, error) {
	feedURL := fmt.Sprintf("%s/users/%s/activity?limit=%d", s.cfg.BaseURL, s.cfg.Username, activityLimit)

	resp, err := s.client.Get(ctx, feedURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, &source.NetError{SourceKey: s.Key(), Err: err}
	}

	if err := source.Classify(resp, source.ClassifyOptions{
		SourceKey:      s.Key(),
		LoginURL:       s.cfg.BaseURL + "/users/sign_in",
		LoginPathHints: []string{"/users/sign_in"},
		Treat404AsAuth: true,
	}); err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &source.NetError{SourceKey: s.Key(), Err: fmt.Errorf("decode activity feed: %w", err)}
	}

	rng := s.cfg.Range()
	start, end := timerange.Resolve(rng, s.now())

	activity := parseActivity(env.HTML, start, end)
	activity.DateRange = rng

	s.log.Debug().
		Int("feed_count", env.Count).
		Int("commits", activity.TotalCommits).
		Str("range", string(rng)).
		Msg("gitlab fetch complete")

	return activity, nil
}
