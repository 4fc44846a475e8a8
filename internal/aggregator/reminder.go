package aggregator

import (
	"context"
	"time"

	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/data/stores"
)

const lastReminderKey = "lastReminder"

// reminderHour is the local hour in which the work-log nag fires.
const reminderHour = 17

// ShouldRemind reports whether the user should be nagged about an unfilled
// work log. The nag fires only in the late-afternoon hour, only when the
// snapshot shows a today-scoped work log without entries, and at most once
// per calendar day.
func ShouldRemind(now time.Time, snap *model.Snapshot, lastReminder time.Time) bool {
	if now.Hour() != reminderHour {
		return false
	}
	if snap == nil || snap.Sources.OA == nil || snap.Sources.OA.WorkLog == nil {
		return false
	}

	workLog := snap.Sources.OA.WorkLog
	if workLog.DateRange != timerange.RangeToday || workLog.HasEntry {
		return false
	}

	return !sameDay(now, lastReminder)
}

// CheckReminder evaluates the reminder predicate against the persisted
// snapshot and, when it fires, records today as reminded so it cannot fire
// again until tomorrow.
func (o *Orchestrator) CheckReminder(ctx context.Context) (bool, error) {
	snap, err := o.Load(ctx)
	if err != nil {
		if stores.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	var lastReminder time.Time
	if err := o.store.Get(ctx, lastReminderKey, &lastReminder); err != nil && !stores.IsNotFoundError(err) {
		return false, err
	}

	now := o.now()
	if !ShouldRemind(now, snap, lastReminder) {
		return false, nil
	}

	if err := o.store.Set(ctx, lastReminderKey, now); err != nil {
		return false, err
	}
	return true, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
