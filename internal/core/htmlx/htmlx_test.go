package htmlx

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceBetween(t *testing.T) {
	start := regexp.MustCompile(`BEGIN`)
	endA := regexp.MustCompile(`ENDA`)
	endB := regexp.MustCompile(`ENDB`)

	tests := []struct {
		name string
		text string
		ends []*regexp.Regexp
		want string
	}{
		{
			name: "slice to first end marker",
			text: "xx BEGIN middle ENDA tail",
			ends: []*regexp.Regexp{endA},
			want: "BEGIN middle ",
		},
		{
			name: "earliest of multiple end markers wins",
			text: "BEGIN one ENDB two ENDA",
			ends: []*regexp.Regexp{endA, endB},
			want: "BEGIN one ",
		},
		{
			name: "no end marker runs to end of input",
			text: "pre BEGIN rest of text",
			ends: []*regexp.Regexp{endA},
			want: "BEGIN rest of text",
		},
		{
			name: "missing start returns empty",
			text: "no marker here ENDA",
			ends: []*regexp.Regexp{endA},
			want: "",
		},
		{
			name: "nil end pattern ignored",
			text: "BEGIN x ENDA",
			ends: []*regexp.Regexp{nil, endA},
			want: "BEGIN x ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SliceBetween(tt.text, start, tt.ends...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceBetween_EndMarkerInsideStartMatch(t *testing.T) {
	// An end pattern that would match inside the start marker itself must
	// not truncate the slice to nothing.
	start := regexp.MustCompile(`<td>`)
	end := regexp.MustCompile(`<td`)

	got := SliceBetween("<td>cell one</td><td>cell two", start, end)
	assert.Equal(t, "<td>cell one</td>", got)
}

func TestAllMatches(t *testing.T) {
	re := regexp.MustCompile(`<li>([^<]+)</li>`)

	got := AllMatches("<li>a</li><li>b</li>", re)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0][1])
	assert.Equal(t, "b", got[1][1])

	assert.Nil(t, AllMatches("no list items", re))
}

func TestAllMatches_Restartable(t *testing.T) {
	re := regexp.MustCompile(`\d+`)
	text := "1 22 333"

	first := AllMatches(text, re)
	second := AllMatches(text, re)
	assert.Equal(t, first, second)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain tags", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"attributes and mixed case", `<A HREF="x">link</A>`, "link"},
		{"entities", "one&nbsp;two&middot;&amp;three", "one two &three"},
		{"whitespace collapse", "a\n\t  b   c", "a b c"},
		{"unclosed tag swallowed", "before <span class='x'>after", "before after"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}
