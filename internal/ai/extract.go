package ai

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON digs a JSON object out of free-form completion text. Models
// rarely honor a strict-JSON instruction fully, so three attempts run in
// order: the whole text, a fenced ```json block, then the first-to-last
// brace substring. Returns "" when none yields valid JSON.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) && strings.HasPrefix(text, "{") {
		return text
	}

	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if gjson.Valid(candidate) {
			return candidate
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		candidate := text[first : last+1]
		if gjson.Valid(candidate) {
			return candidate
		}
	}

	return ""
}
