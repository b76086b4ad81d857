// Package geometry holds the planar geometry used to normalize a card: integer
// pixel points, quadrilaterals, the orientation-aware corner orderer and the
// projective (homography) transform used for perspective correction.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// A Quad is always stored in top-left, top-right, bottom-right, bottom-left
// order, which is the order PerspectiveTransform expects for both its source
// and destination quadrilaterals.
package geometry
