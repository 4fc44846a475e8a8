// Package aggregator orchestrates a refresh cycle: fan out over the enabled
// sources, join their results into one Snapshot, and persist it atomically.
package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/lhjing/workdash/internal/core/config"
	corekv "github.com/lhjing/workdash/internal/core/kv"
	"github.com/lhjing/workdash/internal/core/logging"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/source"
	"github.com/lhjing/workdash/pkg/kv"
)

// Persisted-state keys. The snapshot is replaced under a single key so
// readers never observe a half-written refresh; the sibling keys exist for
// external readers that only want one slice.
const (
	snapshotKey   = "snapshot"
	lastUpdateKey = "lastUpdate"
	systemsKey    = "systems"
)

func loginFaultKey(sourceKey string) string { return sourceKey + "LoginError" }

// Orchestrator runs refresh cycles over the registered sources.
type Orchestrator struct {
	sources []source.Source
	store   corekv.KV
	cfg     *config.Config
	now     func() time.Time
	group   singleflight.Group
	log     zerolog.Logger
}

// New creates an Orchestrator. The clock is injectable for tests.
func New(store corekv.KV, cfg *config.Config, sources []source.Source, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		sources: sources,
		store:   store,
		cfg:     cfg,
		now:     now,
		log:     logging.Component("aggregator"),
	}
}

// Refresh runs one full cycle and returns the assembled snapshot.
// Concurrent callers coalesce onto a single in-flight cycle; both receive
// the same snapshot.
func (o *Orchestrator) Refresh(ctx context.Context) (*model.Snapshot, error) {
	v, err, shared := o.group.Do("refresh", func() (any, error) {
		return o.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		o.log.Debug().Msg("refresh coalesced onto in-flight cycle")
	}
	return v.(*model.Snapshot), nil
}

func (o *Orchestrator) refresh(ctx context.Context) (*model.Snapshot, error) {
	payloads := kv.New[string, model.Payload]()
	faults := kv.New[string, model.LoginFault]()
	failures := kv.New[string, string]()

	var wg sync.WaitGroup
	for _, src := range o.sources {
		if !src.Enabled() {
			continue
		}
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			o.fetchOne(ctx, src, payloads, faults, failures)
		}(src)
	}
	wg.Wait()

	snap := o.assemble(payloads, faults, failures)

	if err := o.persist(ctx, snap); err != nil {
		return nil, err
	}

	o.log.Info().
		Int("badge", snap.BadgeCount()).
		Int("errors", len(snap.Errors)).
		Int("login_faults", len(snap.LoginFaults)).
		Msg("refresh complete")

	return snap, nil
}

// fetchOne isolates a single source's fetch. A failure lands in the fault
// or failure map for that key only and never touches siblings.
func (o *Orchestrator) fetchOne(
	ctx context.Context,
	src source.Source,
	payloads *kv.Store[string, model.Payload],
	faults *kv.Store[string, model.LoginFault],
	failures *kv.Store[string, string],
) {
	key := src.Key()

	payload, err := src.Fetch(ctx)
	if err != nil {
		if authErr, ok := source.AsAuthError(err); ok {
			o.log.Warn().Str("source", key).Str("login_url", authErr.LoginURL).Msg("session expired")
			faults.Set(key, model.LoginFault{
				SourceKey: key,
				Message:   authErr.Message,
				LoginURL:  authErr.LoginURL,
			})
			return
		}
		o.log.Error().Str("source", key).Err(err).Msg("source fetch failed")
		failures.Set(key, err.Error())
		return
	}

	payloads.Set(key, payload)
}

func (o *Orchestrator) assemble(
	payloads *kv.Store[string, model.Payload],
	faults *kv.Store[string, model.LoginFault],
	failures *kv.Store[string, string],
) *model.Snapshot {
	snap := &model.Snapshot{Timestamp: o.now()}

	for _, payload := range payloads.Items() {
		payload.Attach(&snap.Sources)
	}

	if faults.Len() > 0 {
		snap.LoginFaults = faults.Items()
	}

	keys := failures.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		msg, _ := failures.Get(key)
		snap.Errors = append(snap.Errors, model.SourceError{Source: key, Error: msg})
	}

	return snap
}

// persist writes the snapshot and its external-reader side keys. The
// snapshot itself goes first so the single-key atomic replace is never
// behind the metadata keys.
func (o *Orchestrator) persist(ctx context.Context, snap *model.Snapshot) error {
	if err := o.store.Set(ctx, snapshotKey, snap); err != nil {
		return err
	}
	if err := o.store.Set(ctx, lastUpdateKey, snap.Timestamp); err != nil {
		return err
	}
	if err := o.store.Set(ctx, systemsKey, o.cfg.Sources); err != nil {
		return err
	}

	for _, src := range o.sources {
		key := loginFaultKey(src.Key())
		if fault, ok := snap.LoginFaults[src.Key()]; ok {
			if err := o.store.Set(ctx, key, fault); err != nil {
				return err
			}
			continue
		}
		if err := o.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}

// Load returns the last persisted snapshot without fetching.
func (o *Orchestrator) Load(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := o.store.Get(ctx, snapshotKey, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
