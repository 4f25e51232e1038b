package preview

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	charWidthRatio  = 0.6
	lineHeightRatio = 1.6
	itemPadding     = 16.0
	DefaultOverscan = 3
	DefaultFontSize = 48.0
	DefaultWidth    = 800.0
	DefaultViewport = 600.0
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type MeasuredItem struct {
	Item
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Lines  int     `json:"lines"`
}

type ScrollConfig struct {
	ViewportHeight float64 `json:"viewportHeight"`
	ContainerWidth float64 `json:"containerWidth"`
	FontSize       float64 `json:"fontSize"`
	Overscan       int     `json:"overscan"`
}

func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		ViewportHeight: DefaultViewport,
		ContainerWidth: DefaultWidth,
		FontSize:       DefaultFontSize,
		Overscan:       DefaultOverscan,
	}
}

// Window is the slice of items to render. EndIndex is exclusive; OffsetY is
// the top of the first rendered item within the full list.
type Window struct {
	Items       []MeasuredItem `json:"items"`
	StartIndex  int            `json:"startIndex"`
	EndIndex    int            `json:"endIndex"`
	OffsetY     float64        `json:"offsetY"`
	TotalHeight float64        `json:"totalHeight"`
}

// ParseContentToItems splits content into paragraphs on blank lines.
func ParseContentToItems(content string) []Item {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	items := []Item{}
	for _, part := range blankLine.Split(content, -1) {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		items = append(items, Item{Index: len(items), Text: text})
	}
	return items
}

// EstimateLineCount wraps text greedily by word, assuming an average glyph
// width of 0.6 times the font size. Empty text still occupies one line.
func EstimateLineCount(text string, fontSize, width float64) int {
	charsPerLine := 1
	if fontSize > 0 && width > 0 {
		charsPerLine = max(int(math.Floor(width/(fontSize*charWidthRatio))), 1)
	}

	total := 0
	for _, hardLine := range strings.Split(text, "\n") {
		lines := 1
		used := 0
		for _, word := range strings.Fields(hardLine) {
			n := utf8.RuneCountInString(word)
			if used > 0 && used+1+n <= charsPerLine {
				used += 1 + n
				continue
			}
			if used > 0 {
				lines++
			}
			// Words longer than a line are broken across lines.
			extra := (n - 1) / charsPerLine
			lines += extra
			used = n - extra*charsPerLine
		}
		total += lines
	}
	return max(total, 1)
}

func EstimateItemHeight(fontSize float64, lines int) float64 {
	return fontSize*lineHeightRatio*float64(lines) + itemPadding
}

// Measure lays items out top to bottom.
func Measure(items []Item, cfg ScrollConfig) ([]MeasuredItem, float64) {
	measured := make([]MeasuredItem, len(items))
	top := 0.0
	for i, item := range items {
		lines := EstimateLineCount(item.Text, cfg.FontSize, cfg.ContainerWidth)
		height := EstimateItemHeight(cfg.FontSize, lines)
		measured[i] = MeasuredItem{Item: item, Top: top, Height: height, Lines: lines}
		top += height
	}
	return measured, top
}

// CalculateVisibleItems returns the items intersecting the viewport at
// scrollTop, widened by cfg.Overscan items on both ends.
func CalculateVisibleItems(items []Item, scrollTop float64, cfg ScrollConfig) Window {
	measured, total := Measure(items, cfg)
	if len(measured) == 0 {
		return Window{Items: []MeasuredItem{}}
	}

	scrollTop = min(max(scrollTop, 0), total)
	bottom := scrollTop + max(cfg.ViewportHeight, 0)

	first := len(measured) - 1
	for i, m := range measured {
		if m.Top+m.Height > scrollTop {
			first = i
			break
		}
	}
	last := first
	for i := first; i < len(measured); i++ {
		if measured[i].Top >= bottom && i > first {
			break
		}
		last = i
	}

	overscan := max(cfg.Overscan, 0)
	start := max(first-overscan, 0)
	end := min(last+overscan+1, len(measured))

	return Window{
		Items:       measured[start:end],
		StartIndex:  start,
		EndIndex:    end,
		OffsetY:     measured[start].Top,
		TotalHeight: total,
	}
}
