// Package detection finds caption characters in a binary ink map and lays
// them out as lines of text.
//
// # Segmentation
//
// Segment scans two horizontal strips (top and bottom of the image) at a
// fixed row and column stride and flood-fills 4-connected ink from every
// seed. The fill is iterative and capped by a per-region budget:
//
//  1. Each stack pop costs one unit of budget
//  2. A pixel joins the region when it is ink, inside the one pixel margin
//     and not owned by any other region
//  3. A fill that runs out of budget, or reaches a pixel owned elsewhere, is moved
//     to the rejected set and its pixels are never handed out again
//  4. Single-pixel fills are dropped as noise
//
// A buffer-sized ownership map records which region holds each pixel, so
// finalized and rejected regions are pairwise disjoint.
//
// # Layout
//
// Assemble groups boxes into lines by their top edge, orders each line left
// to right and emits tokens. Wide gaps become spaces; short boxes become an
// apostrophe, ! or ? depending on their height relative to the line mean.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounds are inclusive on both corners and padded by one pixel
package detection
