// Package model defines the normalized records the source parsers produce
// and the Snapshot the aggregator persists. All types are plain data,
// independent of any upstream markup or API shape.
package model

import (
	"time"

	"github.com/lhjing/workdash/internal/core/timerange"
)

// Source keys. Each upstream system contributes exactly one slice of the
// snapshot under its key.
const (
	SourceZentao = "zentao"
	SourceGitLab = "gitlab"
	SourceOA     = "oa"
)

// WorkItemStatus is the normalized status of a task or story.
type WorkItemStatus string

const (
	WorkItemPending WorkItemStatus = "pending"
	WorkItemDone    WorkItemStatus = "done"
)

// WorkItem is a normalized task or story from the tracker.
type WorkItem struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Status        WorkItemStatus `json:"status"`
	EstimateHours float64        `json:"estimateHours"` // 0 when absent upstream, never negative
	Assignee      string         `json:"assignee,omitempty"`
	URL           string         `json:"url,omitempty"`
}

// DefectStatus is provenance-assigned: the tracker does not expose a status
// field, only which query the record came from.
type DefectStatus string

const (
	DefectActive   DefectStatus = "active"
	DefectResolved DefectStatus = "resolved"
	DefectClosed   DefectStatus = "closed"
)

// DefectRecord is a normalized bug.
type DefectRecord struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Status        DefectStatus `json:"status"`
	Severity      int          `json:"severity"` // 1 (worst) to 4, default 3
	SeverityLabel string       `json:"severityLabel,omitempty"`
	Priority      string       `json:"priority"` // default "normal"
	Assignee      string       `json:"assignee,omitempty"`
	Resolution    string       `json:"resolution,omitempty"`
	URL           string       `json:"url,omitempty"`
}

// TrackerData is the ZenTao slice of a snapshot: open work items plus the
// merged defect sequence (active first, then resolved-in-period).
type TrackerData struct {
	Tasks []WorkItem     `json:"tasks"`
	Bugs  []DefectRecord `json:"bugs"`
}

// OutstandingDefects counts bugs still in the active state. Drives the
// badge count after each refresh.
func (d *TrackerData) OutstandingDefects() int {
	n := 0
	for _, b := range d.Bugs {
		if b.Status == DefectActive {
			n++
		}
	}
	return n
}

// TotalEstimateHours sums the estimates of all work items.
func (d *TrackerData) TotalEstimateHours() float64 {
	var sum float64
	for _, t := range d.Tasks {
		sum += t.EstimateHours
	}
	return sum
}

// MergeRequestCounts buckets merge-request events in the selected window.
type MergeRequestCounts struct {
	Created  int `json:"created"`
	Merged   int `json:"merged"`
	Approved int `json:"approved"`
}

// CommitActivity is the normalized GitLab slice of a snapshot.
//
// ProjectCounts only covers events whose project name could be extracted;
// when extraction fails for some events, sum(ProjectCounts) is less than
// TotalCommits. The upstream feed gives no way to reconcile this.
type CommitActivity struct {
	TotalCommits   int                `json:"totalCommits"`
	CommitMessages []string           `json:"commitMessages"`
	ProjectCounts  map[string]int     `json:"projectCounts"`
	MergeRequests  MergeRequestCounts `json:"mergeRequests"`
	DateRange      timerange.Range    `json:"dateRange"`
}

// WorkLogEntry is one work-journal row from the OA system.
type WorkLogEntry struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Type    int    `json:"type"`
	LogType int    `json:"logType"`
}

// WorkLogStatus reports whether the user has filed work-journal entries in
// the selected range.
type WorkLogStatus struct {
	DateRange  timerange.Range `json:"dateRange"`
	HasEntry   bool            `json:"hasEntry"`
	EntryCount int             `json:"entryCount"`
	Entries    []WorkLogEntry  `json:"entries"`
}

// MealPeriod identifies a canteen meal slot.
type MealPeriod string

const (
	Breakfast MealPeriod = "breakfast"
	Lunch     MealPeriod = "lunch"
	Dinner    MealPeriod = "dinner"
)

// Meal is one orderable canteen item. Dish is empty when the slot exists
// but no concrete dish was published (placeholder/template weeks).
type Meal struct {
	MealName string `json:"mealName"`
	Price    string `json:"price"`
	Dish     string `json:"dish,omitempty"`
	FullName string `json:"fullName"`
}

// DayMenu is one day of the canteen week menu.
type DayMenu struct {
	Date    string                `json:"date"` // YYYY-MM-DD
	Weekday string                `json:"weekday"`
	Meals   map[MealPeriod][]Meal `json:"meals"`
}

// DishRatio returns the fraction of meals on this day that carry a concrete
// dish name. The menu page renders the real current week and a stale
// template in the same table; only the ratio tells them apart.
func (d DayMenu) DishRatio() (ratio float64, total int) {
	withDish := 0
	for _, meals := range d.Meals {
		for _, m := range meals {
			total++
			if m.Dish != "" {
				withDish++
			}
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(withDish) / float64(total), total
}

// CanteenWeekMenu is the ordered sequence of days that passed the
// current-week filter.
type CanteenWeekMenu struct {
	WeekMenu []DayMenu `json:"weekMenu"`
}

// OfficeData is the OA slice of a snapshot. Canteen is nil when the menu
// fetch failed; work-log failure with a live canteen leaves WorkLog nil.
type OfficeData struct {
	WorkLog *WorkLogStatus   `json:"workLog,omitempty"`
	Canteen *CanteenWeekMenu `json:"canteen,omitempty"`
}

// LoginFault is the distinguished failure for an expired upstream session.
// It short-circuits one source's snapshot contribution without aborting
// siblings, and carries the URL the user must visit to re-login.
type LoginFault struct {
	SourceKey string `json:"sourceKey"`
	Message   string `json:"message"`
	LoginURL  string `json:"loginUrl"`
}

// SourceError records a non-auth failure for one source.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// SourceData holds the per-source payloads of a snapshot. One typed field
// per source key; nil means the source was disabled or failed this cycle.
// Consumers switch on the populated field rather than probing ad hoc shapes.
type SourceData struct {
	Zentao *TrackerData    `json:"zentao,omitempty"`
	GitLab *CommitActivity `json:"gitlab,omitempty"`
	OA     *OfficeData     `json:"oa,omitempty"`
}

// Snapshot is the complete result of one refresh cycle. It replaces the
// previously persisted snapshot wholesale; there is no cross-refresh merge.
type Snapshot struct {
	Sources     SourceData            `json:"sources"`
	Errors      []SourceError         `json:"errors,omitempty"`
	LoginFaults map[string]LoginFault `json:"loginFaults,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// BadgeCount derives the attention count shown next to the tool's entry
// point: outstanding defects assigned to the user.
func (s *Snapshot) BadgeCount() int {
	if s.Sources.Zentao == nil {
		return 0
	}
	return s.Sources.Zentao.OutstandingDefects()
}
