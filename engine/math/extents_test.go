package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestExtentsFromPoints(t *testing.T) {
	e := ExtentsFromPoints([]mgl32.Vec3{{0, 0, 0}, {2, 4, 6}, {-2, 1, 3}})
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, e.Min)
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, e.Max)
	assert.Equal(t, mgl32.Vec3{0, 2, 3}, e.Center())
	assert.True(t, e.Valid())
}

func TestEmptyExtentsInvalid(t *testing.T) {
	assert.False(t, ExtentsFromPoints(nil).Valid())
}

func TestSafeSizeReplacesZero(t *testing.T) {
	e := ExtentsFromPoints([]mgl32.Vec3{{0, 1, 5}, {2, 1, 5}})
	assert.Equal(t, mgl32.Vec3{2, 1, 1}, e.SafeSize())
}

func TestNormalize(t *testing.T) {
	e := ExtentsFromPoints([]mgl32.Vec3{{-1, -1, 0}, {1, 1, 0}})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, e.Normalize(mgl32.Vec3{-1, -1, 0}))
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, e.Normalize(mgl32.Vec3{1, 0, 0}))
	// outside the box clamps
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, e.Normalize(mgl32.Vec3{3, -3, 0}))
}
