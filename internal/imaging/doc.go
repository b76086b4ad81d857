// Package imaging provides the image I/O glue around the card recognizer.
//
// It loads scene files into a Scene (an 8-bit color copy plus a grayscale
// view of the same pixels), caches scenes for the MCP server, saves annotated
// output, and draws detection outlines and labels with a small bitmap font.
// All operations use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// Scenes are always re-anchored at the origin, whatever the bounds of the
// decoded source image.
//
// # Supported Formats
//
// PNG, JPEG and GIF decoders come from the standard library; BMP, TIFF and
// WebP are registered from golang.org/x/image. Saving picks the encoder from
// the file extension.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Scene is never mutated
// after construction, so it may be shared across goroutines.
//
// # Error Handling
//
// Any failure to open or decode a scene wraps ErrUnreadableImage, so callers
// can tell bad inputs apart from other I/O errors with errors.Is.
package imaging
