// Package imaging holds the pixel-level pieces of the caption pipeline.
//
// PixelBuffer is the RGB grid every later stage reads. Threshold turns a
// decoded image into a binary buffer where caption ink is white and all
// else is black. The remaining helpers (SampleColor, CropRegion, Annotate)
// back the inspection tools exposed by the server.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Boxes are inclusive on both corners, matching region bounding boxes
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A PixelBuffer has a single owner;
// LoadBuffer hands out a private copy for that reason.
//
// # Ink Rule
//
// A pixel is ink when its HSV value is above 0.9 and its saturation is
// below 0.1. Thresholding a binary buffer again yields the same buffer.
package imaging
