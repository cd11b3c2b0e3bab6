package loaders

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes texture files into tightly packed RGB or RGBA pixels.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string) (*metadata.ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := il.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func (il *ImageLoader) Decode(data []byte) (*metadata.ImageData, error) {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: unrecognized content", core.ErrUnsupportedImage)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUnsupportedImage, kind.MIME.Value, err)
	}
	core.LogDebug("decoded %s image %dx%d", format, src.Bounds().Dx(), src.Bounds().Dy())

	b := src.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	channels := channelCount(src)
	w, h := b.Dx(), b.Dy()
	pixels := make([]uint8, 0, w*h*channels)
	for y := 0; y < h; y++ {
		line := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		if channels == 4 {
			pixels = append(pixels, line...)
			continue
		}
		for x := 0; x < w; x++ {
			pixels = append(pixels, line[x*4], line[x*4+1], line[x*4+2])
		}
	}

	return &metadata.ImageData{
		Width:    uint32(w),
		Height:   uint32(h),
		Channels: uint8(channels),
		Pixels:   pixels,
	}, nil
}

// channelCount reports 4 when the image carries any non opaque pixel.
func channelCount(img image.Image) int {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		if o.Opaque() {
			return 3
		}
		return 4
	}
	switch img.ColorModel() {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return 4
	}
	return 3
}
