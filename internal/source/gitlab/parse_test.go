package gitlab

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhjing/workdash/internal/core/timerange"
)

var testNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)

// ts renders a feed timestamp the given number of hours from testNow, in
// the local zone so the window comparison is environment-independent.
func ts(hoursFromNow int) string {
	return testNow.Add(time.Duration(hoursFromNow) * time.Hour).Format(time.RFC3339)
}

func pushEvent(datetime, project string, commits ...string) string {
	frag := fmt.Sprintf(`<li class="event-item">
  <time datetime="%s"></time>
  <span>pushed to branch main</span>
  <a class="project-name" href="/x">%s</a>`, datetime, project)
	for i, msg := range commits {
		frag += fmt.Sprintf(`
  <div class="commit-row-title"><a href="/c">%07x</a> &middot; %s</div>`, 0xabc0+i, msg)
	}
	return frag + "\n</li>"
}

func mrEvent(datetime, verb string) string {
	return fmt.Sprintf(`<li class="event-item">
  <time datetime="%s"></time>
  <span>%s merge request !42</span>
</li>`, datetime, verb)
}

func TestParseActivity_WindowFilter(t *testing.T) {
	start, end := timerange.Resolve(timerange.RangeToday, testNow)

	feed := pushEvent(ts(-2), "team/app", "fix login") +
		pushEvent(ts(-1), "team/app", "add tests") +
		pushEvent(ts(1), "team/infra", "bump deps") +
		pushEvent(ts(-16), "team/app", "yesterday work") +
		pushEvent(ts(-40), "team/app", "older work")

	activity := parseActivity(feed, start, end)

	assert.Equal(t, 3, activity.TotalCommits, "events outside the window are discarded")
	assert.Equal(t, []string{"fix login", "add tests", "bump deps"}, activity.CommitMessages)
	assert.Equal(t, map[string]int{"team/app": 2, "team/infra": 1}, activity.ProjectCounts)
}

func TestParseActivity_MergeRequestBuckets(t *testing.T) {
	start, end := timerange.Resolve(timerange.RangeToday, testNow)

	feed := mrEvent(ts(-3), "opened") +
		mrEvent(ts(-2), "accepted") +
		mrEvent(ts(-1), "approved") +
		mrEvent(ts(1), "approved") +
		mrEvent(ts(-30), "opened")

	activity := parseActivity(feed, start, end)

	assert.Equal(t, 1, activity.MergeRequests.Created)
	assert.Equal(t, 1, activity.MergeRequests.Merged)
	assert.Equal(t, 2, activity.MergeRequests.Approved)
	assert.Zero(t, activity.TotalCommits)
}

func TestParseActivity_ProjectExtractionFailureKeepsCommitCount(t *testing.T) {
	start, end := timerange.Resolve(timerange.RangeToday, testNow)

	// no project anchor at all
	feed := fmt.Sprintf(`<li class="event-item">
  <time datetime="%s"></time>
  <span>pushed to branch main</span>
  <div class="commit-row-title"><a href="/c">deadbee</a> &middot; orphan commit</div>
</li>`, ts(-1))

	activity := parseActivity(feed, start, end)

	assert.Equal(t, 1, activity.TotalCommits)
	assert.Empty(t, activity.ProjectCounts)
	assert.Equal(t, []string{"orphan commit"}, activity.CommitMessages)
}

func TestParseActivity_EmptyFeed(t *testing.T) {
	start, end := timerange.Resolve(timerange.RangeToday, testNow)

	activity := parseActivity("", start, end)
	require.NotNil(t, activity)
	assert.Zero(t, activity.TotalCommits)
}

func TestParseActivity_EventWithoutTimestampSkipped(t *testing.T) {
	start, end := timerange.Resolve(timerange.RangeToday, testNow)

	feed := `<li class="event-item"><span>pushed to branch main</span></li>`
	activity := parseActivity(feed, start, end)
	assert.Zero(t, activity.TotalCommits)
}

func TestCommitMessages_HashStripped(t *testing.T) {
	fragment := `<div class="commit-row-title"><a>ab12cd3</a> &middot; fix: handle empty rows</div>`
	msgs := commitMessages(fragment)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fix: handle empty rows", msgs[0])
}
