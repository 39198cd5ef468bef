package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hd = Viewport{ClientWidth: 1920, ClientHeight: 1080}

func TestCompute_Idempotent(t *testing.T) {
	viewports := []Viewport{
		hd,
		{ClientWidth: 1280, ClientHeight: 720},
		{ClientWidth: 375, ClientHeight: 812},
		{ClientWidth: 3840, ClientHeight: 1600},
	}
	for n := 0; n <= LayoutCount; n++ {
		l := LayoutOf(n)
		for _, v := range viewports {
			a := Compute(l, 2, 5, v)
			b := Compute(l, 2, 5, v)
			assert.Equal(t, a, b, "layout %q viewport %+v", l, v)
		}
	}
}

func TestCompute_HD_Layout1(t *testing.T) {
	r := Compute("layout-1", 1, 3, hd)

	require.True(t, r.Enabled())
	assert.Equal(t, Grid{Columns: 3, Rows: 4}, r.Grid)

	// 940 wide gives 528.75 tall, over the 520 budget: clamp and rescale.
	assert.Equal(t, 520.0, r.Tier1.Height)
	assert.Equal(t, 520.0, r.Tier1.HeightBudget)
	assert.InDelta(t, 924.444444, r.Tier1.Width, 1e-6)

	// 626x352 overflows four rows of 1080; refined once to 469x264.
	assert.Equal(t, Tile{Width: 469, Height: 264}, r.Tier2)

	// The block fills the height exactly and would need 241.5px to centre
	// horizontally; layout-1 keeps it left-anchored.
	assert.Equal(t, 0.0, r.BlockTop)
	assert.Equal(t, 241.5, r.BlockLeft)
	// The box is (264+10)*4+4 tall, 20px past the viewport. Grid layouts
	// size the box from the tiles and never shrink it to fit.
	assert.Equal(t, Placement{Width: "1441px", Height: "1100px"}, r.Container)
	assert.Greater(t, 1100, hd.ClientHeight, "container may overflow the viewport")
	assert.Equal(t, 0.0, r.DTMargin)
}

func TestCompute_Layout4Container(t *testing.T) {
	r := Compute("layout-4", 0, 4, Viewport{ClientWidth: 1000, ClientHeight: 800})

	assert.Equal(t, Tile{Width: 485, Height: 272}, r.Tier2)
	assert.Equal(t, Placement{
		Width:      "994px",
		Height:     "568px",
		MarginTop:  "128px",
		MarginLeft: "15px",
	}, r.Container)
}

func TestCompute_SharedBand(t *testing.T) {
	v := Viewport{ClientWidth: 1280, ClientHeight: 720}

	r := Compute("layout-5", 2, 7, v)
	assert.Equal(t, Tile{Width: 492, Height: 276.75, HeightBudget: 340}, r.Tier1)
	// Band is two tier-1 tiles plus a gutter: 563.5.
	assert.Equal(t, Tile{Width: 154, Height: 87}, r.Tier2)
	assert.InDelta(t, 4.15, r.DTMargin, 1e-9)
	assert.Equal(t, Placement{
		Width:     "660px",
		Height:    "563.5px",
		MarginTop: "78.25px",
	}, r.Container)

	// Without tier-1 members the block centres itself in the band.
	r = Compute("layout-5", 0, 7, v)
	assert.Equal(t, "2.75px", r.Container.MarginTop)
}

func TestCompute_LeftAnchoredLayouts(t *testing.T) {
	r := Compute("layout-3", 1, 2, Viewport{ClientWidth: 1280, ClientHeight: 1080})
	// Four columns of 307x172 leave 6px each side.
	assert.Equal(t, Tile{Width: 307, Height: 172}, r.Tier2)
	assert.Equal(t, 6.0, r.BlockLeft)
	assert.Equal(t, "6px", r.Container.MarginLeft)
	assert.Equal(t, "362px", r.Container.MarginTop)

	r = Compute("layout-16", 1, 7, hd)
	assert.Empty(t, r.Container.MarginTop)
}

func TestCompute_Tier2AspectWithinOnePixel(t *testing.T) {
	viewports := []Viewport{
		hd,
		{ClientWidth: 1280, ClientHeight: 720},
		{ClientWidth: 1366, ClientHeight: 768},
		{ClientWidth: 800, ClientHeight: 1280},
		{ClientWidth: 2560, ClientHeight: 1080},
		{ClientWidth: 640, ClientHeight: 360},
	}
	for n := 1; n <= LayoutCount; n++ {
		for _, v := range viewports {
			tile := Compute(LayoutOf(n), 1, 1, v).Tier2
			if !tile.Usable() {
				continue
			}
			assert.LessOrEqual(t, math.Abs(tile.Height-tile.Width*9/16), 1.0,
				"layout-%d %+v: %vx%v", n, v, tile.Width, tile.Height)
		}
	}
}

func TestCompute_Guards(t *testing.T) {
	t.Run("unknown layout", func(t *testing.T) {
		r := Compute(ParseLayout("layout-42"), 3, 3, hd)
		assert.False(t, r.Enabled())
		assert.Equal(t, Rules{}, r)
	})

	t.Run("zero counts", func(t *testing.T) {
		r := Compute("layout-1", 0, 0, hd)
		assert.True(t, r.Tier1.Usable())
		assert.True(t, r.Tier2.Usable())
	})

	t.Run("negative counts clamp", func(t *testing.T) {
		r := Compute("layout-5", -1, -4, hd)
		assert.Equal(t, 0, r.Tier1Count)
		assert.Equal(t, 0, r.Tier2Count)
	})

	t.Run("empty viewport", func(t *testing.T) {
		r := Compute("layout-1", 1, 1, Viewport{})
		assert.True(t, r.Enabled())
		assert.Equal(t, Tile{}, r.Tier1)
		assert.Equal(t, Tile{}, r.Tier2)
		assert.True(t, r.Container.IsEmpty())
	})

	t.Run("viewport too small for tiles", func(t *testing.T) {
		for n := 1; n <= LayoutCount; n++ {
			r := Compute(LayoutOf(n), 1, 1, Viewport{ClientWidth: 30, ClientHeight: 20})
			assert.False(t, r.Tier1.Usable(), "layout-%d", n)
			assert.False(t, math.IsNaN(r.DTMargin), "layout-%d", n)
			assert.NotContains(t, r.Container.Width, "NaN")
		}
	})
}
