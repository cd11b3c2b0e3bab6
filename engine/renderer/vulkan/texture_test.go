package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBAPixelsExpandsRGB(t *testing.T) {
	img := &metadata.ImageData{
		Width:    2,
		Height:   1,
		Channels: 3,
		Pixels:   []uint8{1, 2, 3, 4, 5, 6},
	}
	out, err := rgbaPixels(img)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0xff, 4, 5, 6, 0xff}, out)
}

func TestRGBAPixelsPassesRGBAThrough(t *testing.T) {
	img := &metadata.ImageData{
		Width:    1,
		Height:   1,
		Channels: 4,
		Pixels:   []uint8{9, 8, 7, 6},
	}
	out, err := rgbaPixels(img)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 6}, out)
}

func TestRGBAPixelsRejectsShortData(t *testing.T) {
	_, err := rgbaPixels(&metadata.ImageData{Width: 2, Height: 2, Channels: 3, Pixels: []uint8{1, 2, 3}})
	assert.Error(t, err)

	_, err = rgbaPixels(&metadata.ImageData{Width: 1, Height: 1, Channels: 2, Pixels: []uint8{1, 2}})
	assert.Error(t, err)
}

func TestVertexAttributesDefaultLayout(t *testing.T) {
	attrs := vertexAttributes(metadata.DefaultVertexLayout)
	require.Len(t, attrs, 2)

	assert.Equal(t, uint32(0), attrs[0].Location)
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[0].Format)

	assert.Equal(t, uint32(1), attrs[1].Location)
	assert.Equal(t, uint32(12), attrs[1].Offset)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[1].Format)
}

func TestVertexAttributesSkipsUnsupported(t *testing.T) {
	layout := metadata.VertexLayout{
		Stride: 8,
		Attributes: []metadata.VertexAttribute{
			{Location: 0, Components: 3, Offset: 0},
			{Location: 1, Components: 5, Offset: 3},
		},
	}
	assert.Len(t, vertexAttributes(layout), 1)
}

func TestBackendIgnoresRecordingOutsideFrame(t *testing.T) {
	b := New("test", false)
	assert.Equal(t, metadata.BackendVulkan, b.Kind())

	// none of these may touch the device before a frame begins
	b.UseProgram(metadata.ResourceHandle{})
	b.BindMesh(metadata.ResourceHandle{})
	b.BindTexture(0, metadata.ResourceHandle{})
	b.Draw(3)
	b.UnbindMesh()
	assert.NoError(t, b.EndFrame())

	assert.Equal(t, metadata.ErrorCodeUploadFailed, b.CreateMesh([]float32{0, 0, 0, 1, 1, 1}, metadata.DefaultVertexLayout).ErrorCode)
	assert.Equal(t, metadata.ErrorCodeLoadFailed, b.CreateTexture(nil).ErrorCode)
	assert.Equal(t, metadata.ErrorCodeUnsupported, b.CompileProgram(metadata.ShaderSourcePair{}).ErrorCode)
}
