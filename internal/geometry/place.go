package geometry

import (
	"math"
	"strconv"

	"github.com/roach88/tierview/internal/roster"
)

// avatarMax caps the avatar box edge.
const avatarMax = 100

// Placement is the size and position of one tile, as CSS pixel strings.
// An empty string leaves the property unset.
type Placement struct {
	Width        string `json:"width"`
	Height       string `json:"height"`
	MarginTop    string `json:"marginTop"`
	MarginLeft   string `json:"marginLeft"`
	MarginRight  string `json:"marginRight"`
	MarginBottom string `json:"marginBottom"`
	Top          string `json:"top"`
	Left         string `json:"left"`
	Right        string `json:"right"`
	Bottom       string `json:"bottom"`
	Avatar       string `json:"avatar"`
	Hidden       bool   `json:"hidden"`
}

// IsEmpty reports whether p sets nothing.
func (p Placement) IsEmpty() bool {
	return p == (Placement{})
}

// Canonical returns p as a map for canonical encoding. Every key is
// present so two placements compare by their bytes.
func (p Placement) Canonical() map[string]any {
	return map[string]any{
		"width":        p.Width,
		"height":       p.Height,
		"marginTop":    p.MarginTop,
		"marginLeft":   p.MarginLeft,
		"marginRight":  p.MarginRight,
		"marginBottom": p.MarginBottom,
		"top":          p.Top,
		"left":         p.Left,
		"right":        p.Right,
		"bottom":       p.Bottom,
		"avatar":       p.Avatar,
		"hidden":       p.Hidden,
	}
}

// Place positions one member. ordinal is the member's 1-based position
// among members of the same tier (local occupant first, then join order).
//
// Tiers 0 and 3, ordinals below 1 and disabled rules give an empty
// placement. Callers filter out focus and hidden-domain members.
func Place(r Rules, tier roster.Tier, ordinal int) Placement {
	if !r.Enabled() || ordinal < 1 {
		return Placement{}
	}
	switch tier {
	case roster.Tier1:
		return placeTier1(r, ordinal)
	case roster.Tier2:
		return placeTier2(r, ordinal)
	}
	return Placement{}
}

func placeTier1(r Rules, ordinal int) Placement {
	t := r.Tier1
	if !t.Usable() {
		return Placement{}
	}
	cw := float64(r.Viewport.ClientWidth)
	ch := float64(r.Viewport.ClientHeight)
	p := sized(t.Width, t.Height)

	l := r.Layout
	switch {
	case l.in(1, 2, 7, 8, 10):
		p.MarginTop = px((ch - t.Height) / 2)
	case l.in(3, 16):
		p.MarginLeft = px((cw - t.Width) / 2)
		p.MarginTop = px((t.HeightBudget - t.Height) / 2)
	case l.in(5, 11, 12, 13, 14, 15):
		top := sharedBandTop(r.Viewport, t)
		if ordinal != 1 {
			top += t.Height + gutter
		}
		p.MarginTop = px(top)
	case l.in(6):
		left := (cw - 4*(t.Width+gutter)) / 2
		if ordinal != 1 {
			left += (t.Width + gutter) * float64(ordinal-1)
		}
		p.MarginLeft = px(left)
	case l.in(9):
		side := (cw - 3*(t.Width+cornerGap)) / 2
		edge := (ch - 2*(t.Height+cornerGap)) / 2
		switch ordinal {
		case 1:
			p.Left, p.Top = px(side), px(edge)
		case 2:
			p.Right, p.Top = px(side), px(edge)
		case 3:
			p.Left, p.Bottom = px(side), px(edge)
		case 4:
			p.Right, p.Bottom = px(side), px(edge)
		default:
			p.Hidden = true
		}
	}
	return p
}

func placeTier2(r Rules, ordinal int) Placement {
	if r.Layout.in(9) {
		return placeCentre(r)
	}
	t := r.Tier2
	if !t.Usable() {
		return Placement{}
	}
	p := sized(t.Width, t.Height)
	if r.Layout.sharedBand() {
		if ordinal > r.Grid.Rows {
			p.MarginTop = px(r.DTMargin)
		}
		p.MarginBottom = px(r.DTMargin)
	}
	return p
}

// placeCentre puts a layout-9 tier-2 member in the middle slot between the
// corner columns, at 80% of a corner tile. All tier-2 members share it.
func placeCentre(r Rules) Placement {
	t := r.Tier1
	if !t.Usable() {
		return Placement{}
	}
	cw := float64(r.Viewport.ClientWidth)
	ch := float64(r.Viewport.ClientHeight)

	edge := (ch - 2*(t.Height+cornerGap)) / 2
	side := (cw-3*(t.Width+cornerGap))/2 + (t.Width + cornerGap)

	p := sized(t.Width*0.8, t.Height*0.8)
	p.Top = px(edge + t.Height*0.1)
	p.Right = px(side + t.Width*0.1)
	return p
}

func sized(w, h float64) Placement {
	return Placement{
		Width:  px(w),
		Height: px(h),
		Avatar: px(math.Min(h, avatarMax)),
	}
}

// px formats a length the way a browser serialises a CSS number: shortest
// round-trip decimal, no exponent. Non-finite values are unset.
func px(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
