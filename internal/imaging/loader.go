package imaging

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/spakin/netpbm"
)

// ImageCache provides thread-safe caching of decoded images and their
// PixelBuffer copies, keyed by file path.
//
// The MCP server keeps one cache for its lifetime so that a caption run, a
// threshold preview and a region crop on the same file decode it once.
// Cached buffers are handed out as fresh copies, so the per-run ownership
// rule for PixelBuffers still holds.
//
// # Memory Management
//
// Entries remain in memory until explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	buffers map[string]*PixelBuffer
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		buffers: make(map[string]*PixelBuffer),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Decoding goes through imaging.Open with EXIF auto-orientation, so phone
// photos of captions come out upright. Supported formats are PNG, JPEG and
// GIF, with PBM/PGM/PPM/PAM read through netpbm when imaging cannot decode
// the file.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		pnm, pnmErr := decodeNetpbm(path)
		if pnmErr != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		img = pnm
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

func decodeNetpbm(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return netpbm.Decode(f, nil)
}

// LoadBuffer returns a private PixelBuffer copy of the image at path.
func (c *ImageCache) LoadBuffer(path string) (*PixelBuffer, error) {
	c.mu.RLock()
	if buf, ok := c.buffers[path]; ok {
		c.mu.RUnlock()
		return buf.clone(), nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	buf := FromImage(img)

	c.mu.Lock()
	c.buffers[path] = buf
	c.mu.Unlock()

	return buf.clone(), nil
}

// Clear removes all entries from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.buffers = make(map[string]*PixelBuffer)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	delete(c.buffers, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func (b *PixelBuffer) clone() *PixelBuffer {
	cp := &PixelBuffer{width: b.width, height: b.height, pix: make([]uint8, len(b.pix))}
	copy(cp.pix, b.pix)
	return cp
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "netpbm", or "unknown", taken from the
	// extension.
	Format string `json:"format"`

	// InkPixels is the number of pixels that pass the caption ink threshold.
	InkPixels int `json:"ink_pixels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and reports its size,
// format and how much caption ink it contains.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	buf, err := cache.LoadBuffer(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".pbm", ".pgm", ".ppm", ".pam":
		format = "netpbm"
	}

	return &ImageInfo{
		Width:         buf.Width(),
		Height:        buf.Height(),
		Format:        format,
		InkPixels:     Threshold(buf).InkCount(),
		FileSizeBytes: stat.Size(),
	}, nil
}
