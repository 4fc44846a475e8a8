package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/source"
)

func boolPtr(b bool) *bool { return &b }

func newTestSource(t *testing.T, handler http.Handler) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := source.NewClient(5 * time.Second)
	require.NoError(t, err)

	cfg := config.SourceConfig{
		Name:      "GitLab",
		BaseURL:   srv.URL,
		Username:  "lhjing",
		Enabled:   boolPtr(true),
		DateRange: timerange.RangeToday,
	}
	return New(client, cfg, func() time.Time { return testNow })
}

func TestFetch_ActivityEnvelope(t *testing.T) {
	feed := pushEvent(ts(-1), "team/app", "fix login", "add tests")

	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/lhjing/activity", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 1, "html": feed})
	}))

	payload, err := src.Fetch(context.Background())
	require.NoError(t, err)

	activity, ok := payload.(*model.CommitActivity)
	require.True(t, ok)
	assert.Equal(t, 1, activity.TotalCommits)
	assert.Equal(t, []string{"fix login", "add tests"}, activity.CommitMessages)
	assert.Equal(t, timerange.RangeToday, activity.DateRange)
}

func TestFetch_404MeansNotAuthenticated(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := src.Fetch(context.Background())
	authErr, ok := source.AsAuthError(err)
	require.True(t, ok, "404 on the activity feed means the session is gone, got %v", err)
	assert.Equal(t, model.SourceGitLab, authErr.SourceKey)
	assert.Contains(t, authErr.LoginURL, "/users/sign_in")
}

func TestFetch_MalformedEnvelope(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	_, ok := source.AsAuthError(err)
	assert.False(t, ok)
}
