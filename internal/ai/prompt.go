package ai

import (
	"fmt"
	"strings"

	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
)

const summarySystemPrompt = "你是一位专业的技术总结助手，擅长分析代码提交记录并生成简洁明了的工作总结。"

const dishSystemPrompt = "你是一位专业的美食顾问，擅长分析菜品特点。"

var rangeLabels = map[timerange.Range]string{
	timerange.RangeToday: "今日",
	timerange.RangeWeek:  "本周",
	timerange.RangeMonth: "本月",
}

var mealLabels = map[model.MealPeriod]string{
	model.Breakfast: "早餐",
	model.Lunch:     "午餐",
	model.Dinner:    "晚餐",
}

// buildWorkSummaryPrompt renders the commit messages of the selected range
// into a summarization request.
func buildWorkSummaryPrompt(messages []string, rng timerange.Range) string {
	label := rangeLabels[rng]
	if label == "" {
		label = rangeLabels[timerange.RangeToday]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一位专业的技术总结助手。根据以下%s的 Git 提交记录，生成一份简洁的工作总结：\n\n", label)
	b.WriteString("提交记录：\n")
	for i, msg := range messages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, msg)
	}
	fmt.Fprintf(&b, `
请用中文总结%s完成的工作，要求：
1. 分析提交记录，归纳主要工作内容
2. 按功能模块分类（如果有多个模块）
3. 使用简洁的列表形式
4. 突出重点功能和改进

格式示例：
• 功能开发：...
• Bug 修复：...
• 优化改进：...`, label)

	return b.String()
}

// buildBugSummaryPrompt renders the defect list into an analysis request.
func buildBugSummaryPrompt(bugs []model.DefectRecord) string {
	var b strings.Builder
	b.WriteString("你是一位专业的质量分析助手。根据以下当前指派给我的缺陷列表，生成一份简洁的缺陷分析：\n\n")
	b.WriteString("缺陷列表：\n")
	for i, bug := range bugs {
		fmt.Fprintf(&b, "%d. [%s][严重度%d] %s\n", i+1, bug.Status, bug.Severity, bug.Title)
	}
	b.WriteString(`
请用中文分析，要求：
1. 按严重程度归类，指出需要优先处理的缺陷
2. 归纳缺陷的共性问题（如果有）
3. 使用简洁的列表形式`)

	return b.String()
}

// buildDishPrompt renders the strict-JSON dish-analysis request. The
// contract names five fields; the completion is post-validated because
// models do not reliably honor it.
func buildDishPrompt(dishName string, meal model.MealPeriod) string {
	return fmt.Sprintf(`请分析食堂%s菜品"%s"。

**分析要求**：
1. **简短介绍**（30-50字）：
   - 描述菜品的口味特点（如酸甜、香辣、清淡等）
   - 提及主要营养价值（如高蛋白、富含维生素等）
   - 适合的人群或场景

2. **主要食材**（3-5个）：
   - 列出构成该菜品的关键食材
   - 按重要性排序

3. **做法关键词**（3-4个）：
   - 简要描述烹饪方法（如"红烧"、"清蒸"、"爆炒"、"油炸"等）
   - 关键工艺特点

4. **做法步骤**（3-5个步骤）：
   - 简要列出烹饪的主要步骤
   - 每个步骤8-15字，简洁明了

**输出格式**（严格 JSON，不要包含任何其他文字）：
`+"```json"+`
{
  "dishName": "%s",
  "intro": "这里是30-50字的简短介绍",
  "ingredients": ["食材1", "食材2", "食材3"],
  "cookingMethods": ["做法1", "做法2", "做法3"],
  "cookingSteps": ["步骤1", "步骤2", "步骤3", "步骤4"]
}
`+"```"+`

**关键要求**：
- 仅返回 JSON 代码块，不要添加任何解释性文字
- 确保所有字段都存在，数组至少包含一个元素
- cookingSteps 每个步骤简短（8-15字）`, mealLabels[meal], dishName, dishName)
}
