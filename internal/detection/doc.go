// Package detection finds card-shaped regions in a grayscale scene.
//
// The extractor follows a fixed pipeline:
//
//  1. Blur: a small box filter suppresses sensor noise
//  2. Threshold: a fixed global level splits card stock from background
//  3. Contours: only the outer borders of foreground regions are traced;
//     regions nested inside another region's hole are ignored
//  4. Ordering: contours are sorted by enclosed area, largest first, with
//     ties kept in discovery (raster) order
//  5. Filtering: a contour is a card when its area lies inside a band
//     relative to the scene area and its polygon approximation has exactly
//     four vertices
//
// Each accepted contour becomes a Candidate carrying its geometry and the
// canonical flattened card image.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Coordinates are relative to the scene bounds, so a scene whose bounds do
// not start at the origin is treated as if it did.
//
// # Contour Order
//
// A contour starts at the topmost, then leftmost, pixel of its region and
// walks the border counter-clockwise as seen on screen (down the left side
// first). The corner orderer's diamond rule relies on this winding.
//
// # Rejections
//
// Contours outside the area band or with the wrong vertex count are dropped
// silently and only counted in Stats. An empty scene is not an error.
package detection
