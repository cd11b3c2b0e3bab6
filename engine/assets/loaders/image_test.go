package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeTransparentPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})
	src.SetNRGBA(1, 1, color.NRGBA{G: 255, A: 255})

	img, err := (&ImageLoader{}).Decode(encodePNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Equal(t, uint8(4), img.Channels)
	assert.Len(t, img.Pixels, 16)
	assert.Equal(t, []uint8{255, 0, 0, 128}, img.Pixels[:4])
}

func TestDecodeOpaquePNGIsRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{R: uint8(x * 10), G: 1, B: 2, A: 255})
	}

	img, err := (&ImageLoader{}).Decode(encodePNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), img.Channels)
	assert.Equal(t, []uint8{0, 1, 2, 10, 1, 2, 20, 1, 2}, img.Pixels)
}

func TestDecodeJPEGIsRGB(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := (&ImageLoader{}).Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint8(3), img.Channels)
	assert.Len(t, img.Pixels, 4*4*3)
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, err := (&ImageLoader{}).Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, core.ErrUnsupportedImage)
}

func TestLoadMissingImage(t *testing.T) {
	_, err := (&ImageLoader{}).Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
