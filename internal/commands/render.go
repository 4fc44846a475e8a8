package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/styles"
)

// renderSnapshot writes the human-readable dashboard view of a snapshot.
func renderSnapshot(w io.Writer, snap *model.Snapshot) {
	fmt.Fprintln(w, styles.Header.Render("工作台 "+snap.Timestamp.Format("2006-01-02 15:04:05")))

	renderSourceStates(w, snap)

	if snap.Sources.Zentao != nil {
		renderTracker(w, snap.Sources.Zentao)
	}
	if snap.Sources.GitLab != nil {
		renderActivity(w, snap.Sources.GitLab)
	}
	if snap.Sources.OA != nil {
		renderOffice(w, snap.Sources.OA)
	}

	if badge := snap.BadgeCount(); badge > 0 {
		fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("待处理 BUG：%d", badge)))
	}
}

func renderSourceStates(w io.Writer, snap *model.Snapshot) {
	failed := map[string]string{}
	for _, e := range snap.Errors {
		failed[e.Source] = e.Error
	}

	keys := []string{model.SourceZentao, model.SourceGitLab, model.SourceOA}
	for _, key := range keys {
		ok := snapshotHas(snap, key)
		fault, degraded := snap.LoginFaults[key]

		if !ok && !degraded {
			if msg, isFailed := failed[key]; isFailed {
				fmt.Fprintf(w, "%s  %s  %s\n", styles.StatusChip(false, false), key, styles.Muted.Render(msg))
			}
			continue
		}

		line := fmt.Sprintf("%s  %s", styles.StatusChip(ok, degraded), key)
		if degraded {
			line += "  " + styles.Muted.Render(fault.LoginURL)
		}
		fmt.Fprintln(w, line)
	}
}

func snapshotHas(snap *model.Snapshot, key string) bool {
	switch key {
	case model.SourceZentao:
		return snap.Sources.Zentao != nil
	case model.SourceGitLab:
		return snap.Sources.GitLab != nil
	case model.SourceOA:
		return snap.Sources.OA != nil
	}
	return false
}

func renderTracker(w io.Writer, data *model.TrackerData) {
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("\n禅道  任务 %d（预计 %.1fh）  BUG %d",
		len(data.Tasks), data.TotalEstimateHours(), len(data.Bugs))))

	if len(data.Tasks) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"ID", "任务", "状态", "预计"})
		for _, t := range data.Tasks {
			tw.AppendRow(table.Row{t.ID, t.Title, string(t.Status), fmt.Sprintf("%.1fh", t.EstimateHours)})
		}
		tw.Render()
	}

	if len(data.Bugs) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"ID", "BUG", "状态", "严重度", "解决方案"})
		for _, b := range data.Bugs {
			tw.AppendRow(table.Row{b.ID, b.Title, string(b.Status), b.Severity, b.Resolution})
		}
		tw.Render()
	}
}

func renderActivity(w io.Writer, activity *model.CommitActivity) {
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("\nGitLab  提交 %d  MR 创建 %d / 合并 %d / 审批 %d",
		activity.TotalCommits,
		activity.MergeRequests.Created, activity.MergeRequests.Merged, activity.MergeRequests.Approved)))

	if len(activity.ProjectCounts) > 0 {
		names := make([]string, 0, len(activity.ProjectCounts))
		for name := range activity.ProjectCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, activity.ProjectCounts[name])
		}
	}

	for _, msg := range activity.CommitMessages {
		fmt.Fprintln(w, styles.Muted.Render("  • "+msg))
	}
}

func renderOffice(w io.Writer, office *model.OfficeData) {
	fmt.Fprintln(w, styles.Header.Render("\nOA"))

	if wl := office.WorkLog; wl != nil {
		if wl.HasEntry {
			fmt.Fprintln(w, styles.Success.Render(fmt.Sprintf("  工作日志已填写（%d 条）", wl.EntryCount)))
		} else {
			fmt.Fprintln(w, styles.Warning.Render("  工作日志尚未填写"))
		}
	}

	if c := office.Canteen; c != nil && len(c.WeekMenu) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"日期", "星期", "早餐", "午餐", "晚餐"})
		for _, day := range c.WeekMenu {
			tw.AppendRow(table.Row{
				day.Date,
				day.Weekday,
				mealCell(day.Meals[model.Breakfast]),
				mealCell(day.Meals[model.Lunch]),
				mealCell(day.Meals[model.Dinner]),
			})
		}
		tw.Render()
	}
}

func mealCell(meals []model.Meal) string {
	out := ""
	for i, m := range meals {
		if i > 0 {
			out += "\n"
		}
		if m.Dish != "" {
			out += m.Dish
		} else {
			out += m.MealName
		}
	}
	return out
}
