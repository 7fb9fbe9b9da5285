package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redPNG encodes a small red PNG.
func redPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, format, err := Decode(redPNG(t, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	w, h := Dimensions(img)
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
}

func TestDecode_Invalid(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Decode([]byte("hello"))
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("a.png")
	assert.False(t, ok)

	img, _, err := Decode(redPNG(t, 1, 1))
	require.NoError(t, err)
	c.Put("a.png", img)
	got, ok := c.Get("a.png")
	require.True(t, ok)
	assert.Same(t, img, got)
	assert.Equal(t, 1, c.Len())
}
