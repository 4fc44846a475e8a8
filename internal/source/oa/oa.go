// Package oa fetches the user's work-journal status and the canteen week
// menu from the office OA system. The two fetches degrade independently: a
// dead canteen page never hides the work log, but an expired session on the
// work log aborts the whole source.
package oa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/logging"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/source"
)

// loginPagePath is where the user re-authenticates after a session expiry.
const loginPagePath = "/web/home/index"

// Source fetches office data from the OA system.
type Source struct {
	client *source.Client
	cfg    config.SourceConfig
	now    func() time.Time
	log    zerolog.Logger
}

var _ source.Source = (*Source)(nil)

// New creates the OA source. The clock is injectable for tests.
func New(client *source.Client, cfg config.SourceConfig, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}
	return &Source{
		client: client,
		cfg:    cfg,
		now:    now,
		log:    logging.Component("oa"),
	}
}

func (s *Source) Key() string { return model.SourceOA }

func (s *Source) Enabled() bool { return s.cfg.IsEnabled() }

// apiURL is the API origin, which can differ from the user-facing BaseURL.
func (s *Source) apiURL() string {
	if s.cfg.APIURL != "" {
		return s.cfg.APIURL
	}
	return s.cfg.BaseURL
}

// Fetch pulls the work log first, then the canteen menu. An auth failure on
// the work log means the whole OA session is gone, so the canteen request
// is not even attempted.
func (s *Source) Fetch(ctx context.Context) (model.Payload, error) {
	workLog, wlErr := s.fetchWorkLog(ctx)
	if wlErr != nil {
		if _, ok := source.AsAuthError(wlErr); ok {
			return nil, wlErr
		}
		s.log.Warn().Err(wlErr).Msg("work log fetch failed, trying canteen anyway")
	}

	canteen, cErr := s.fetchCanteen(ctx)
	if cErr != nil {
		s.log.Warn().Err(cErr).Msg("canteen menu fetch failed")
	}

	if workLog == nil && canteen == nil {
		return nil, &source.NetError{
			SourceKey: s.Key(),
			Err:       fmt.Errorf("no OA data available: %w", errors.Join(wlErr, cErr)),
		}
	}

	return &model.OfficeData{WorkLog: workLog, Canteen: canteen}, nil
}
