// Package layout arranges images on a canvas so they read as a balanced
// collage.
//
// # Algorithm
//
// [Arrange] aims every image at the same displayed area, a share of the
// canvas fill ratio. It then recursively partitions the padded canvas:
// each step splits the images into two groups balanced mostly by count,
// gives each group space in proportion to its count and area, and cuts
// horizontally or vertically depending on which slices better match the
// group aspect ratios. A single image takes a blend of the scale that
// fits its slice and its equal-area scale, so it may overflow the slice.
//
// Overflow is cleaned up afterwards: images are moved inside the padded
// canvas, then overlapping pairs are pushed apart along the axis of least
// overlap for a bounded number of passes. If overlaps remain, every image
// shrinks by 5% and the group is re-centered, and resolution runs again.
//
// The input order is shuffled with a seeded PCG source before sorting by
// area, so equal-area images land in different slots on each run while a
// fixed [Options.Seed] reproduces a layout exactly.
//
// # Texts
//
// Captions are re-homed to the top, middle or bottom band of the canvas,
// whichever they are closest to, and centered horizontally.
//
// # Committing
//
// Arrange is pure. The returned [Result] addresses images by id; use
// [Result.Apply] to write the placements back into a scene.
package layout
