package zentao

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lhjing/workdash/internal/core/htmlx"
	"github.com/lhjing/workdash/internal/core/model"
)

// ZenTao listing pages render one main table per page. The table is located
// by its id marker and sliced to its closing tag; rows are read cell by
// cell. Metadata columns are counted from the END of the row because the
// instance occasionally injects extra leading columns (batch checkboxes,
// custom fields) without touching the trailing ones.
var (
	taskTableStart = regexp.MustCompile(`(?i)<table[^>]*id=["']?table-my-task`)
	bugTableStart  = regexp.MustCompile(`(?i)<table[^>]*id=["']?table-my-bug`)
	tableEnd       = regexp.MustCompile(`(?i)</table>`)

	rowRe    = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe   = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	anchorRe = regexp.MustCompile(`(?is)<a[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)

	digitsRe = regexp.MustCompile(`\d+`)
)

// row is one scraped <tr>, cells stripped to text.
type row struct {
	id    int
	title string
	url   string
	cells []string
}

// parseRows extracts the data rows of the table identified by tableStart.
// Rows without an integer id cell are skipped, never fatal.
func parseRows(html, baseURL string, tableStart *regexp.Regexp) []row {
	table := htmlx.SliceBetween(html, tableStart, tableEnd)
	if table == "" {
		return nil
	}

	var rows []row
	for _, m := range htmlx.AllMatches(table, rowRe) {
		r, ok := parseRow(m[1], baseURL)
		if !ok {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func parseRow(rowHTML, baseURL string) (row, bool) {
	var r row

	cellMatches := htmlx.AllMatches(rowHTML, cellRe)
	if len(cellMatches) == 0 {
		return r, false // header or spacer row
	}

	for _, c := range cellMatches {
		r.cells = append(r.cells, htmlx.StripTags(c[1]))
	}

	// id = first cell whose text is a bare integer
	id := 0
	for _, text := range r.cells {
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && n > 0 {
			id = n
			break
		}
	}
	if id == 0 {
		return r, false
	}
	r.id = id

	if a := anchorRe.FindStringSubmatch(rowHTML); a != nil {
		r.url = resolveURL(baseURL, a[1])
		r.title = htmlx.StripTags(a[2])
	}
	if r.title == "" {
		return r, false
	}

	return r, true
}

// parseTasks reads the my-task listing. Trailing columns, from the end:
// estimate hours, then status.
func parseTasks(html, baseURL string) []model.WorkItem {
	var tasks []model.WorkItem
	for _, r := range parseRows(html, baseURL, taskTableStart) {
		item := model.WorkItem{
			ID:     r.id,
			Title:  r.title,
			URL:    r.url,
			Status: model.WorkItemPending,
		}

		n := len(r.cells)
		if n >= 1 {
			item.EstimateHours = parseEstimate(r.cells[n-1])
		}
		if n >= 2 && isDoneStatus(r.cells[n-2]) {
			item.Status = model.WorkItemDone
		}

		tasks = append(tasks, item)
	}
	return tasks
}

// parseBugs reads a bug listing. Trailing columns, from the end:
// resolution, assignee, severity. Status is provenance-assigned from the
// query the listing answered, not read from the page.
func parseBugs(html, baseURL string, status model.DefectStatus) []model.DefectRecord {
	var bugs []model.DefectRecord
	for _, r := range parseRows(html, baseURL, bugTableStart) {
		bug := model.DefectRecord{
			ID:       r.id,
			Title:    r.title,
			URL:      r.url,
			Status:   status,
			Severity: 3,
			Priority: "normal",
		}

		n := len(r.cells)
		if n >= 1 {
			bug.Resolution = strings.TrimSpace(r.cells[n-1])
		}
		if n >= 2 {
			bug.Assignee = strings.TrimSpace(r.cells[n-2])
		}
		if n >= 3 {
			if sev, ok := parseSeverity(r.cells[n-3]); ok {
				bug.Severity = sev
				bug.SeverityLabel = strings.TrimSpace(r.cells[n-3])
			}
		}

		bugs = append(bugs, bug)
	}
	return bugs
}

func parseEstimate(text string) float64 {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "h"))
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func isDoneStatus(text string) bool {
	switch strings.TrimSpace(text) {
	case "已完成", "已关闭", "done", "closed":
		return true
	}
	return false
}

func parseSeverity(text string) (int, bool) {
	m := digitsRe.FindString(text)
	if m == "" {
		return 0, false
	}
	sev, err := strconv.Atoi(m)
	if err != nil || sev < 1 || sev > 4 {
		return 0, false
	}
	return sev, true
}

func resolveURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}
