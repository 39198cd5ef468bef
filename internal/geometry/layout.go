package geometry

import (
	"strconv"
	"strings"
)

// Layout names one of the sixteen tiered templates, or None.
type Layout string

// None disables tiered sizing entirely.
const None Layout = ""

const layoutPrefix = "layout-"

// LayoutCount is the number of tiered templates.
const LayoutCount = 16

// ParseLayout maps an identifier to a Layout. Anything that is not
// layout-1 through layout-16 is None.
func ParseLayout(s string) Layout {
	n, ok := layoutNumber(s)
	if !ok {
		return None
	}
	return LayoutOf(n)
}

// LayoutOf returns layout-n, or None when n is out of range.
func LayoutOf(n int) Layout {
	if n < 1 || n > LayoutCount {
		return None
	}
	return Layout(layoutPrefix + strconv.Itoa(n))
}

// Number returns the template number, 0 for None.
func (l Layout) Number() int {
	n, _ := layoutNumber(string(l))
	return n
}

// Valid reports whether l names a tiered template.
func (l Layout) Valid() bool {
	return l.Number() != 0
}

func layoutNumber(s string) (int, bool) {
	rest, ok := strings.CutPrefix(s, layoutPrefix)
	if !ok || rest == "" || rest[0] == '0' || rest[0] == '+' {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > LayoutCount {
		return 0, false
	}
	return n, true
}

// in reports whether l is one of the given template numbers.
func (l Layout) in(nums ...int) bool {
	n := l.Number()
	for _, m := range nums {
		if n == m {
			return true
		}
	}
	return false
}

// Grid is the tier-2 grid of a layout: how many small tiles fit per row
// and how many rows are budgeted.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// GridFor returns the tier-2 grid for a layout. Unknown layouts and
// layout-1 use 3x4.
func GridFor(l Layout) Grid {
	switch l.Number() {
	case 4:
		return Grid{Columns: 2, Rows: 2}
	case 2:
		return Grid{Columns: 2, Rows: 3}
	case 3:
		return Grid{Columns: 4, Rows: 2}
	case 5:
		return Grid{Columns: 4, Rows: 6}
	case 6:
		return Grid{Columns: 6, Rows: 3}
	case 7, 12, 15:
		return Grid{Columns: 4, Rows: 5}
	case 8, 11, 14:
		return Grid{Columns: 4, Rows: 4}
	case 10, 13:
		return Grid{Columns: 4, Rows: 6}
	case 16:
		return Grid{Columns: 7, Rows: 1}
	default:
		return Grid{Columns: 3, Rows: 4}
	}
}

// Multiplier scales the viewport into the tier-1 tile budget.
type Multiplier struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MultiplierFor returns the tier-1 budget multipliers of a layout.
// layout-1 to layout-4 and unknown layouts take half the viewport.
func MultiplierFor(l Layout) Multiplier {
	switch l.Number() {
	case 5, 14, 15:
		return Multiplier{Width: 0.4, Height: 0.5}
	case 6:
		return Multiplier{Width: 0.25, Height: 0.29}
	case 7, 8, 10, 11, 12, 13:
		return Multiplier{Width: 0.25, Height: 0.5}
	case 9:
		return Multiplier{Width: 0.3, Height: 0.5}
	case 16:
		return Multiplier{Width: 1, Height: 0.78}
	default:
		return Multiplier{Width: 0.5, Height: 0.5}
	}
}

// sharedBand reports layouts where tier-1 and tier-2 share one vertical
// band: the tier-2 block is as tall as two stacked tier-1 tiles.
func (l Layout) sharedBand() bool {
	return l.in(5, 14, 15)
}
