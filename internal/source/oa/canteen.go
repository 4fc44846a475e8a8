package oa

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lhjing/workdash/internal/core/htmlx"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/source"
)

const canteenMenuPath = "/web/oa/canteen/ordermenulist"

// The order-menu page renders the live current week and a stale template
// week inside the same table. Only the share of labels carrying a concrete
// dish name tells them apart, hence the ratio threshold.
const currentWeekDishRatio = 0.5

var (
	orderRowRe = regexp.MustCompile(`(?s)<tr\s+class="order">(.*?)</tr>`)
	dateCellRe = regexp.MustCompile(`<td[^>]*>([^<]+)\(([^)]+)\)</td>`)
	cellRe     = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	labelRe    = regexp.MustCompile(`(?s)<label\s+class="form-check-label"[^>]*>(.*?)</label>`)

	// mealLabelRe splits a label into meal name, price, and the optional
	// concrete dish: 早餐A（6元）(地瓜粥) or just 早餐A（6元）.
	mealLabelRe = regexp.MustCompile(`^([^(（]+)（([^)）]+)）(?:\(([^)]+)\))?`)
)

// mealMarkers locate each period's section inside the day cell. The page
// prefixes every period with a red-star span.
var mealMarkers = []struct {
	period model.MealPeriod
	re     *regexp.Regexp
}{
	{model.Breakfast, markerRe("早餐")},
	{model.Lunch, markerRe("午餐")},
	{model.Dinner, markerRe("晚餐")},
}

var anyMarkerRe = markerRe("(?:早餐|午餐|晚餐)")

func markerRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`\*(?:&nbsp;|\s)*</span>\s*` + label + `：`)
}

func (s *Source) fetchCanteen(ctx context.Context) (*model.CanteenWeekMenu, error) {
	form := url.Values{}
	form.Set("room_id", "19")
	form.Set("order_type", "0")

	resp, err := s.client.PostForm(ctx, s.apiURL()+canteenMenuPath, form)
	if err != nil {
		return nil, &source.NetError{SourceKey: s.Key(), Err: err}
	}

	if err := source.Classify(resp, source.ClassifyOptions{
		SourceKey: s.Key(),
		LoginURL:  s.apiURL() + loginPagePath,
	}); err != nil {
		return nil, err
	}

	menu := parseCanteenMenu(string(resp.Body))
	if len(menu.WeekMenu) == 0 {
		s.log.Debug().Msg("canteen menu parsed empty, likely out-of-range week")
	}
	return menu, nil
}

// parseCanteenMenu extracts the current-week menu from the order page.
// Malformed rows are skipped; days failing the dish-ratio filter are
// treated as template placeholders and dropped.
func parseCanteenMenu(html string) *model.CanteenWeekMenu {
	menu := &model.CanteenWeekMenu{WeekMenu: []model.DayMenu{}}

	for _, row := range htmlx.AllMatches(html, orderRowRe) {
		rowContent := row[1]

		dateMatch := dateCellRe.FindStringSubmatch(rowContent)
		if dateMatch == nil {
			continue
		}

		cells := htmlx.AllMatches(rowContent, cellRe)
		if len(cells) < 2 {
			continue
		}
		dayContent := cells[len(cells)-1][1]

		day := model.DayMenu{
			Date:    strings.TrimSpace(dateMatch[1]),
			Weekday: strings.TrimSpace(dateMatch[2]),
			Meals:   map[model.MealPeriod][]model.Meal{},
		}

		for _, marker := range mealMarkers {
			meals := extractMeals(dayContent, marker.re)
			if len(meals) > 0 {
				day.Meals[marker.period] = meals
			}
		}

		ratio, total := day.DishRatio()
		if total == 0 || ratio < currentWeekDishRatio {
			continue
		}

		menu.WeekMenu = append(menu.WeekMenu, day)
	}

	return menu
}

// extractMeals slices the day cell from one period marker to the next (or
// the cell end) and parses every order label inside the slice.
func extractMeals(content string, marker *regexp.Regexp) []model.Meal {
	loc := marker.FindStringIndex(content)
	if loc == nil {
		return nil
	}

	section := content[loc[1]:]
	if next := anyMarkerRe.FindStringIndex(section); next != nil {
		section = section[:next[0]]
	}

	var meals []model.Meal
	for _, label := range htmlx.AllMatches(section, labelRe) {
		text := strings.TrimSpace(htmlx.StripTags(label[1]))
		m := mealLabelRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		meal := model.Meal{
			MealName: strings.TrimSpace(m[1]),
			Price:    strings.TrimSpace(m[2]),
			Dish:     strings.TrimSpace(m[3]),
		}
		if meal.Dish != "" {
			meal.FullName = fmt.Sprintf("%s（%s）(%s)", meal.MealName, meal.Price, meal.Dish)
		} else {
			meal.FullName = fmt.Sprintf("%s（%s）", meal.MealName, meal.Price)
		}
		meals = append(meals, meal)
	}

	return meals
}
