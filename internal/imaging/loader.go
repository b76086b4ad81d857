package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrUnreadableImage is returned when a scene file cannot be opened or decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// Scene is a decoded input image in the two representations the recognizer
// consumes. Both share the same zero-origin bounds.
type Scene struct {
	// Path is the file the scene was loaded from, empty for in-memory scenes.
	Path string

	// Source is the image exactly as decoded.
	Source image.Image

	// Color is an 8-bit non-premultiplied copy of Source.
	Color *image.NRGBA

	// Gray is the single-channel intensity view of Color.
	Gray *image.Gray
}

// NewScene derives the color and grayscale representations of img.
func NewScene(img image.Image) *Scene {
	c := imaging.Clone(img)
	return &Scene{
		Source: img,
		Color:  c,
		Gray:   Grayscale(c),
	}
}

// Bounds returns the scene rectangle, always anchored at the origin.
func (s *Scene) Bounds() image.Rectangle {
	return s.Color.Bounds()
}

// LoadScene reads and decodes the image at path.
//
// Any open or decode failure is reported as ErrUnreadableImage wrapping the
// underlying cause.
func LoadScene(path string) (*Scene, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	s := NewScene(img)
	s.Path = path
	return s, nil
}

// Save encodes img to path, picking the format from the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// IsImageFile reports whether path has an extension of a decodable format.
func IsImageFile(path string) bool {
	_, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

var formatByExt = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
	".webp": "webp",
}

// ImageCache provides thread-safe caching of loaded scenes to avoid redundant
// disk reads and conversions.
//
// The cache stores decoded scenes keyed by their file path. Once a scene is
// loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached scenes remain in memory until explicitly removed via Evict() or Clear().
// Each entry holds three copies of the pixels (source, color, gray), so long
// running servers should evict paths they no longer need.
type ImageCache struct {
	mu     sync.RWMutex
	scenes map[string]*Scene
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		scenes: make(map[string]*Scene),
	}
}

// Load retrieves a scene from the cache or loads it from disk if not cached.
//
// The scene is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) will result in separate cache entries.
// Errors wrap ErrUnreadableImage.
func (c *ImageCache) Load(path string) (*Scene, error) {
	c.mu.RLock()
	if s, ok := c.scenes[path]; ok {
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	s, err := LoadScene(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.scenes[path] = s
	c.mu.Unlock()

	return s, nil
}

// Len returns the number of cached scenes.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scenes)
}

// Clear removes all scenes from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.scenes = make(map[string]*Scene)
	c.mu.Unlock()
}

// Evict removes a specific scene from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.scenes, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format detected from the file extension, or "unknown".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// # Format Detection
//
// The format is determined by file extension (case-insensitive):
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - ".bmp" -> "bmp"
//   - ".tif", ".tiff" -> "tiff"
//   - ".webp" -> "webp"
//   - Other extensions -> "unknown"
//
// # Color Depth Detection
//
// Color depth is determined by the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	s, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		format = "unknown"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch s.Source.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := s.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
