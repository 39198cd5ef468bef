// Package geometry computes tile sizes and positions for the tiered
// conference layouts.
//
// Compute turns a layout, the tier-1 and tier-2 member counts and the
// viewport into Rules: the tier-1 feature tile, the tier-2 grid tile, the
// remote container box and the layout-5/14/15 row gutter. Place turns
// Rules plus a member's tier and ordinal into a Placement of CSS pixel
// strings.
//
// Everything here is pure and safe for concurrent use. Unknown layouts,
// empty viewports and tiles that would not have a positive size produce
// empty placements, never NaN.
package geometry
