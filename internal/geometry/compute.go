package geometry

import "math"

// Fixed spacing, in pixels.
const (
	tileInset    = 20 // subtracted from the tier-1 budget on each axis
	gutter       = 10 // between tier-2 tiles and around the grid
	refineGutter = 6  // per-row allowance when the grid is shrunk to fit
	frame        = 4  // container border allowance
	cornerGap    = 40 // spacing between layout-9 corner tiles
)

const (
	ratioTall = 9.0 / 16.0
	ratioWide = 16.0 / 9.0
)

// Viewport is the drawable client area, in pixels.
type Viewport struct {
	ClientWidth  int `json:"clientWidth" yaml:"width"`
	ClientHeight int `json:"clientHeight" yaml:"height"`
}

// Tile is a computed tile size.
type Tile struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// HeightBudget is the vertical space the layout allows before the
	// 16:9 clamp. Only tier-1 tiles carry it.
	HeightBudget float64 `json:"heightBudget,omitempty"`
}

// Usable reports whether the tile has positive, finite dimensions.
func (t Tile) Usable() bool {
	return finitePositive(t.Width) && finitePositive(t.Height)
}

// Rules is everything Place needs for one layout pass.
//
// A zero Rules (Layout None) places nothing.
type Rules struct {
	Layout     Layout   `json:"layout"`
	Viewport   Viewport `json:"viewport"`
	Grid       Grid     `json:"grid"`
	Tier1Count int      `json:"tier1Count"`
	Tier2Count int      `json:"tier2Count"`

	// Tier1 and Tier2 are zero when the viewport leaves no room for them.
	Tier1 Tile `json:"tier1"`
	Tier2 Tile `json:"tier2"`

	// BlockTop and BlockLeft are the offsets that would centre the full
	// tier-2 grid in its band. The container only applies them for some
	// layouts.
	BlockTop  float64 `json:"blockTop"`
	BlockLeft float64 `json:"blockLeft"`

	// Container is the box holding every remote tile.
	Container Placement `json:"container"`

	// DTMargin is the vertical gutter that spreads tier-2 rows across the
	// shared band of layouts 5, 14 and 15. Zero elsewhere.
	DTMargin float64 `json:"dtMargin"`
}

// Enabled reports whether r carries tiered geometry at all.
func (r Rules) Enabled() bool {
	return r.Layout.Valid()
}

// Compute derives the layout rules for a tier composition and viewport.
// It is pure: the same arguments always give equal results.
func Compute(l Layout, tier1, tier2 int, v Viewport) Rules {
	if !l.Valid() {
		return Rules{}
	}
	r := Rules{
		Layout:     l,
		Viewport:   v,
		Grid:       GridFor(l),
		Tier1Count: max(tier1, 0),
		Tier2Count: max(tier2, 0),
	}
	if v.ClientWidth <= 0 || v.ClientHeight <= 0 {
		return r
	}

	if t1 := Tier1Tile(l, v); t1.Usable() {
		r.Tier1 = t1
	}
	band, ok := tier2Band(l, v, r.Tier1)
	if !ok {
		return r
	}
	t2 := tier2Tile(band, float64(v.ClientWidth), r.Grid)
	if !t2.Usable() {
		return r
	}
	r.Tier2 = t2
	r.layoutContainer(band)
	return r
}

// Tier1Tile sizes a feature tile: the layout's share of the viewport minus
// the inset, 16:9 from the width, clamped to the height budget.
func Tier1Tile(l Layout, v Viewport) Tile {
	m := MultiplierFor(l)
	width := float64(v.ClientWidth)*m.Width - tileInset
	height := width * ratioTall
	budget := float64(v.ClientHeight)*m.Height - tileInset

	if height > budget {
		height = budget
		width = budget * ratioWide
	}
	return Tile{Width: width, Height: height, HeightBudget: budget}
}

// tier2Band is the height available to the tier-2 grid.
func tier2Band(l Layout, v Viewport, tier1 Tile) (float64, bool) {
	if !l.sharedBand() {
		return float64(v.ClientHeight), true
	}
	if !tier1.Usable() {
		return 0, false
	}
	return 2*tier1.Height + gutter, true
}

// tier2Tile fits cols x rows tiles of 16:9 into width x band: size from the
// width first, then one corrective pass from the height if the grid would
// overflow. Dimensions are truncated to whole pixels.
func tier2Tile(band, width float64, g Grid) Tile {
	cols := float64(max(g.Columns, 1))
	rows := float64(max(g.Rows, 1))

	w := math.Trunc((width-gutter)/cols - gutter)
	h := math.Trunc(w * ratioTall)

	if (h+gutter)*rows > band {
		h = math.Trunc(band/rows - refineGutter)
		w = math.Trunc(h * ratioWide)
	}
	return Tile{Width: w, Height: h}
}

// layoutContainer sizes and offsets the remote container around the
// tier-2 grid.
func (r *Rules) layoutContainer(band float64) {
	l := r.Layout
	width := float64(r.Viewport.ClientWidth)
	cols := float64(max(r.Grid.Columns, 1))
	rows := float64(max(r.Grid.Rows, 1))
	w, h := r.Tier2.Width, r.Tier2.Height

	r.BlockTop = (band - (h+refineGutter)*rows) / 2
	r.BlockLeft = (width - (w+gutter)*cols) / 2

	var c Placement
	switch {
	case l.in(1, 2, 3, 5, 6, 7, 8, 11, 12, 14, 15, 16):
		if r.BlockTop > 0 && !l.in(16) {
			c.MarginTop = px(r.BlockTop)
		}
		// Left-anchored layouts keep the grid against the tier-1 column.
		if r.BlockLeft > 0 && l.in(3, 6, 16) {
			c.MarginLeft = px(r.BlockLeft)
		}
	case l.in(4):
		c.MarginTop = px((band - h*rows) / 2)
		c.MarginLeft = px((width - w*cols) / 2)
	}

	boxWidth := (w+gutter)*cols + frame
	switch {
	case l.in(1, 2, 3, 4, 6, 7, 8, 10, 11, 12, 13):
		c.Width = px(boxWidth)
		// Sized from the tiles, not the band: after the height refinement
		// the box can still exceed the band by 4px per row plus the frame.
		c.Height = px((h+gutter)*rows + frame)
	case l.sharedBand():
		c.Width = px(boxWidth)
		c.Height = px(band)
		if rows > 1 {
			r.DTMargin = (band - rows*h) / (2*rows - 2)
		}
		if r.Tier1Count > 0 && r.Tier1.Usable() {
			c.MarginTop = px(sharedBandTop(r.Viewport, r.Tier1))
		}
	}
	r.Container = c
}

// sharedBandTop is the top margin of the first of two stacked tier-1 tiles.
func sharedBandTop(v Viewport, t Tile) float64 {
	return (float64(v.ClientHeight) - 2*t.Height - gutter) / 2
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
