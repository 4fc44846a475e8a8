package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/data/db"
	"github.com/lhjing/workdash/internal/data/stores"
	"github.com/lhjing/workdash/internal/source"
)

type stubSource struct {
	key     string
	enabled bool
	fetch   func(ctx context.Context) (model.Payload, error)
	calls   atomic.Int64
}

func (s *stubSource) Key() string   { return s.key }
func (s *stubSource) Enabled() bool { return s.enabled }
func (s *stubSource) Fetch(ctx context.Context) (model.Payload, error) {
	s.calls.Add(1)
	return s.fetch(ctx)
}

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

func newTestOrchestrator(t *testing.T, sources ...source.Source) (*Orchestrator, *stores.KVStore) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := stores.NewKVStore(database)
	cfg := config.DefaultConfig()
	return New(store, &cfg, sources, func() time.Time { return testNow }), store
}

func okTracker() *stubSource {
	return &stubSource{
		key:     model.SourceZentao,
		enabled: true,
		fetch: func(context.Context) (model.Payload, error) {
			return &model.TrackerData{
				Bugs: []model.DefectRecord{
					{ID: 1, Title: "白屏", Status: model.DefectActive},
					{ID: 2, Title: "历史", Status: model.DefectResolved},
				},
			}, nil
		},
	}
}

func okActivity() *stubSource {
	return &stubSource{
		key:     model.SourceGitLab,
		enabled: true,
		fetch: func(context.Context) (model.Payload, error) {
			return &model.CommitActivity{TotalCommits: 3, DateRange: timerange.RangeToday}, nil
		},
	}
}

func TestRefresh_PartialFailureNeverNullsSiblings(t *testing.T) {
	failing := &stubSource{
		key:     model.SourceOA,
		enabled: true,
		fetch: func(context.Context) (model.Payload, error) {
			return nil, &source.NetError{SourceKey: model.SourceOA, Err: errors.New("boom")}
		},
	}

	o, _ := newTestOrchestrator(t, okTracker(), okActivity(), failing)

	snap, err := o.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, snap.Sources.Zentao)
	assert.NotNil(t, snap.Sources.GitLab)
	assert.Nil(t, snap.Sources.OA)

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, model.SourceOA, snap.Errors[0].Source)
	assert.Empty(t, snap.LoginFaults)
}

func TestRefresh_AuthFailureRecordsLoginFault(t *testing.T) {
	expired := &stubSource{
		key:     model.SourceOA,
		enabled: true,
		fetch: func(context.Context) (model.Payload, error) {
			return nil, &source.AuthError{
				SourceKey: model.SourceOA,
				Message:   "请重新登录",
				LoginURL:  "https://oa.example.com/web/home/index",
			}
		},
	}

	o, store := newTestOrchestrator(t, okTracker(), expired)

	snap, err := o.Refresh(context.Background())
	require.NoError(t, err)

	require.Contains(t, snap.LoginFaults, model.SourceOA)
	assert.Equal(t, "https://oa.example.com/web/home/index", snap.LoginFaults[model.SourceOA].LoginURL)
	assert.Empty(t, snap.Errors, "auth failures are not generic errors")

	// the per-source fault key is written for external readers
	var fault model.LoginFault
	require.NoError(t, store.Get(context.Background(), loginFaultKey(model.SourceOA), &fault))
	assert.Equal(t, "请重新登录", fault.Message)
}

func TestRefresh_LoginFaultKeyClearedOnRecovery(t *testing.T) {
	ctx := context.Background()
	o, store := newTestOrchestrator(t, okTracker())

	require.NoError(t, store.Set(ctx, loginFaultKey(model.SourceZentao), model.LoginFault{SourceKey: model.SourceZentao}))

	_, err := o.Refresh(ctx)
	require.NoError(t, err)

	has, err := store.Has(ctx, loginFaultKey(model.SourceZentao))
	require.NoError(t, err)
	assert.False(t, has, "a healthy refresh clears the stale fault key")
}

func TestRefresh_DisabledSourceNotFetched(t *testing.T) {
	disabled := okActivity()
	disabled.enabled = false

	o, _ := newTestOrchestrator(t, okTracker(), disabled)

	snap, err := o.Refresh(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snap.Sources.GitLab)
	assert.Zero(t, disabled.calls.Load())
}

func TestRefresh_PersistsAndLoads(t *testing.T) {
	ctx := context.Background()
	o, store := newTestOrchestrator(t, okTracker(), okActivity())

	snap, err := o.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, testNow, snap.Timestamp)
	assert.Equal(t, 1, snap.BadgeCount())

	loaded, err := o.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sources.Zentao)
	assert.Equal(t, 2, len(loaded.Sources.Zentao.Bugs))
	assert.Equal(t, 3, loaded.Sources.GitLab.TotalCommits)

	var lastUpdate time.Time
	require.NoError(t, store.Get(ctx, lastUpdateKey, &lastUpdate))
	assert.True(t, lastUpdate.Equal(testNow))

	var systems map[string]config.SourceConfig
	require.NoError(t, store.Get(ctx, systemsKey, &systems))
	assert.Contains(t, systems, "zentao")
}

func TestRefresh_ReplacesNotMerges(t *testing.T) {
	ctx := context.Background()

	src := okTracker()
	o, _ := newTestOrchestrator(t, src, okActivity())

	_, err := o.Refresh(ctx)
	require.NoError(t, err)

	// second cycle: gitlab gone, zentao shrinks
	src.fetch = func(context.Context) (model.Payload, error) {
		return &model.TrackerData{}, nil
	}
	o2 := New(o.store, o.cfg, []source.Source{src}, o.now)

	snap, err := o2.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.Sources.GitLab)

	loaded, err := o2.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded.Sources.GitLab, "previous cycle's data must not survive the replace")
	assert.Empty(t, loaded.Sources.Zentao.Bugs)
}

func TestRefresh_ConcurrentCallsCoalesce(t *testing.T) {
	release := make(chan struct{})
	slow := &stubSource{
		key:     model.SourceZentao,
		enabled: true,
		fetch: func(context.Context) (model.Payload, error) {
			<-release
			return &model.TrackerData{}, nil
		},
	}

	o, _ := newTestOrchestrator(t, slow)

	const callers = 5
	var wg sync.WaitGroup
	snaps := make([]*model.Snapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := o.Refresh(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}

	// let the callers pile up on the in-flight cycle, then release it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, slow.calls.Load(), "concurrent refreshes coalesce onto one fetch")
	for i := 1; i < callers; i++ {
		assert.Same(t, snaps[0], snaps[i])
	}
}
