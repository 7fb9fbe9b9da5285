// Package images decodes and caches the bitmaps of image resources.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrEmpty = errors.New("images: empty body")

// Cache holds decoded images keyed by resolved URL.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

func (c *Cache) Get(url string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[url]
	return img, ok
}

func (c *Cache) Put(url string, img image.Image) {
	c.mu.Lock()
	c.images[url] = img
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Decode decodes a PNG, JPEG, GIF, WebP or BMP body.
func Decode(body []byte) (image.Image, string, error) {
	if len(body) == 0 {
		return nil, "", ErrEmpty
	}
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}

// Dimensions returns the size of an image.
func Dimensions(img image.Image) (width, height int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
