package gitlab

import (
	"regexp"
	"strings"
	"time"

	"github.com/lhjing/workdash/internal/core/htmlx"
	"github.com/lhjing/workdash/internal/core/model"
)

// The feed HTML is a flat run of <li class="event-item"> fragments. Events
// are split on the opening marker rather than matched as balanced tags
// because the fragments nest further <li> elements inside.
var (
	eventSplitRe  = regexp.MustCompile(`<li class="event-item`)
	eventTimeRe   = regexp.MustCompile(`(?i)<time[^>]*datetime="([^"]+)"`)
	commitTitleRe = regexp.MustCompile(`(?is)<div class="commit-row-title">(.*?)</div>`)

	// best-effort: the project link class has varied across GitLab
	// versions, so a miss only loses the per-project bucket, never the
	// commit count
	projectNameRe = regexp.MustCompile(`(?is)<a[^>]*class="[^"]*project[^"]*"[^>]*>(.*?)</a>`)
)

// parseActivity scans the activity feed, discards events outside
// [start, end), and classifies the rest into commits and merge-request
// buckets.
func parseActivity(html string, start, end time.Time) *model.CommitActivity {
	activity := &model.CommitActivity{
		CommitMessages: []string{},
		ProjectCounts:  map[string]int{},
	}

	fragments := eventSplitRe.Split(html, -1)
	if len(fragments) <= 1 {
		return activity
	}

	for _, fragment := range fragments[1:] {
		ts, ok := eventTime(fragment)
		if !ok {
			continue
		}
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		classifyEvent(fragment, activity)
	}

	return activity
}

func classifyEvent(fragment string, activity *model.CommitActivity) {
	switch {
	case strings.Contains(fragment, "pushed to branch") || strings.Contains(fragment, "pushed new"):
		activity.TotalCommits++
		activity.CommitMessages = append(activity.CommitMessages, commitMessages(fragment)...)
		if name, ok := projectName(fragment); ok {
			activity.ProjectCounts[name]++
		}
	case strings.Contains(fragment, "approved merge request"):
		activity.MergeRequests.Approved++
	case strings.Contains(fragment, "accepted merge request"):
		activity.MergeRequests.Merged++
	case strings.Contains(fragment, "opened merge request"):
		activity.MergeRequests.Created++
	}
}

func eventTime(fragment string) (time.Time, bool) {
	m := eventTimeRe.FindStringSubmatch(fragment)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return ts.Local(), true
}

// commitMessages reads the commit-row-title entries of a push event. Each
// title is "<hash> <message>"; the hash token is dropped.
func commitMessages(fragment string) []string {
	var messages []string
	for _, m := range htmlx.AllMatches(fragment, commitTitleRe) {
		text := htmlx.StripTags(m[1])
		parts := strings.Fields(text)
		if len(parts) < 2 {
			continue
		}
		msg := strings.Join(parts[1:], " ")
		messages = append(messages, msg)
	}
	return messages
}

func projectName(fragment string) (string, bool) {
	m := projectNameRe.FindStringSubmatch(fragment)
	if m == nil {
		return "", false
	}
	name := htmlx.StripTags(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}
