package oa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhjing/workdash/internal/core/model"
)

func orderRow(date, weekday, dayContent string) string {
	return `<tr class="order">
  <td class="date-cell">` + date + `(` + weekday + `)</td>
  <td>` + dayContent + `</td>
</tr>`
}

func mealSection(period string, labels ...string) string {
	out := `<span style="color: red;">*&nbsp;</span>` + period + `：`
	for _, l := range labels {
		out += `<div class="form-check"><input type="checkbox"/><label class="form-check-label">` + l + `</label></div>`
	}
	return out
}

func TestParseCanteenMenu_EndToEnd(t *testing.T) {
	html := `<table>` +
		orderRow("2026-08-31", "周一", mealSection("早餐", "早餐A（6元）(地瓜粥)")) +
		orderRow("2026-09-01", "周二", mealSection("早餐", "早餐A（6元）(小米粥)")) +
		`</table>`

	menu := parseCanteenMenu(html)
	require.Len(t, menu.WeekMenu, 2)

	day := menu.WeekMenu[0]
	assert.Equal(t, "2026-08-31", day.Date)
	assert.Equal(t, "周一", day.Weekday)

	breakfast := day.Meals[model.Breakfast]
	require.Len(t, breakfast, 1)
	assert.Equal(t, model.Meal{
		MealName: "早餐A",
		Price:    "6元",
		Dish:     "地瓜粥",
		FullName: "早餐A（6元）(地瓜粥)",
	}, breakfast[0])
}

func TestParseCanteenMenu_DishRatioFilter(t *testing.T) {
	// 4 labeled + 2 unlabeled = ratio 0.67 -> included
	includedDay := mealSection("早餐", "早餐A（6元）(地瓜粥)", "早餐B（8元）(包子)") +
		mealSection("午餐", "午餐A（15元）(红烧肉)", "午餐B（15元）(鱼香肉丝)", "午餐C（12元）") +
		mealSection("晚餐", "晚餐A（12元）")

	// 1 labeled + 3 unlabeled = ratio 0.25 -> template week, excluded
	excludedDay := mealSection("早餐", "早餐A（6元）(豆浆)") +
		mealSection("午餐", "午餐A（15元）", "午餐B（15元）") +
		mealSection("晚餐", "晚餐A（12元）")

	html := orderRow("2026-08-31", "周一", includedDay) +
		orderRow("2026-09-07", "周一", excludedDay)

	menu := parseCanteenMenu(html)
	require.Len(t, menu.WeekMenu, 1)
	assert.Equal(t, "2026-08-31", menu.WeekMenu[0].Date)

	ratio, total := menu.WeekMenu[0].DishRatio()
	assert.Equal(t, 6, total)
	assert.InDelta(t, 0.667, ratio, 0.01)
}

func TestParseCanteenMenu_MealPeriodSlicing(t *testing.T) {
	day := mealSection("早餐", "早餐A（6元）(地瓜粥)") +
		mealSection("午餐", "午餐A（15元）(宫保鸡丁)") +
		mealSection("晚餐", "晚餐A（12元）(炒面)")

	menu := parseCanteenMenu(orderRow("2026-08-31", "周一", day))
	require.Len(t, menu.WeekMenu, 1)

	meals := menu.WeekMenu[0].Meals
	require.Len(t, meals[model.Breakfast], 1)
	require.Len(t, meals[model.Lunch], 1)
	require.Len(t, meals[model.Dinner], 1)
	assert.Equal(t, "地瓜粥", meals[model.Breakfast][0].Dish)
	assert.Equal(t, "宫保鸡丁", meals[model.Lunch][0].Dish)
	assert.Equal(t, "炒面", meals[model.Dinner][0].Dish)
}

func TestParseCanteenMenu_MalformedRowsSkipped(t *testing.T) {
	html := `<tr class="order"><td>no date here</td><td>junk</td></tr>` +
		orderRow("2026-08-31", "周一", mealSection("午餐", "午餐A（15元）(青椒肉丝)"))

	menu := parseCanteenMenu(html)
	require.Len(t, menu.WeekMenu, 1)
	assert.Equal(t, "2026-08-31", menu.WeekMenu[0].Date)
}

func TestParseCanteenMenu_Empty(t *testing.T) {
	menu := parseCanteenMenu("<html><body></body></html>")
	require.NotNil(t, menu)
	assert.Empty(t, menu.WeekMenu)
}

func TestExtractMeals_PriceWithoutDish(t *testing.T) {
	content := mealSection("晚餐", "晚餐B（10元）")
	meals := extractMeals(content, mealMarkers[2].re)
	require.Len(t, meals, 1)
	assert.Equal(t, "晚餐B", meals[0].MealName)
	assert.Equal(t, "10元", meals[0].Price)
	assert.Empty(t, meals[0].Dish)
	assert.Equal(t, "晚餐B（10元）", meals[0].FullName)
}
