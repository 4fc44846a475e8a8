package ai

import (
	"context"
	"errors"

	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
)

// ErrNoActivity is returned when the snapshot holds nothing to summarize.
var ErrNoActivity = errors.New("no activity to summarize in the selected range")

// Summarizer turns snapshot slices into natural-language summaries.
type Summarizer struct {
	client Completer
}

// NewSummarizer wraps a completion client.
func NewSummarizer(client Completer) *Summarizer {
	return &Summarizer{client: client}
}

// WorkSummary summarizes the snapshot's commit messages.
func (s *Summarizer) WorkSummary(ctx context.Context, snap *model.Snapshot) (string, error) {
	if snap == nil || snap.Sources.GitLab == nil || len(snap.Sources.GitLab.CommitMessages) == 0 {
		return "", ErrNoActivity
	}

	activity := snap.Sources.GitLab
	rng := activity.DateRange
	if !rng.IsValid() {
		rng = timerange.RangeToday
	}

	prompt := buildWorkSummaryPrompt(activity.CommitMessages, rng)
	return s.client.Complete(ctx, summarySystemPrompt, prompt)
}

// BugSummary analyzes the snapshot's defect list.
func (s *Summarizer) BugSummary(ctx context.Context, snap *model.Snapshot) (string, error) {
	if snap == nil || snap.Sources.Zentao == nil || len(snap.Sources.Zentao.Bugs) == 0 {
		return "", ErrNoActivity
	}

	prompt := buildBugSummaryPrompt(snap.Sources.Zentao.Bugs)
	return s.client.Complete(ctx, summarySystemPrompt, prompt)
}
