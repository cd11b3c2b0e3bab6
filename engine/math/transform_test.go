package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec4(t *testing.T, expected, actual mgl32.Vec4) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-5, "component %d of %v", i, actual)
	}
}

func assertMat4(t *testing.T, expected, actual mgl32.Mat4) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-5, "element %d", i)
	}
}

func TestModelMatrixIdentity(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	assertMat4(t, mgl32.Ident4(), m)
}

func TestModelMatrixTranslationAndScale(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assertVec4(t, mgl32.Vec4{3, 4, 5, 1}, p)
}

func TestModelMatrixOrder(t *testing.T) {
	tr := mgl32.Vec3{0.5, -1, 2}
	rot := mgl32.Vec3{30, 45, 60}
	sc := mgl32.Vec3{1, 2, 3}

	expected := mgl32.Translate3D(tr[0], tr[1], tr[2]).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rot[0]))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rot[1]))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rot[2]))).
		Mul4(mgl32.Scale3D(sc[0], sc[1], sc[2]))

	assertMat4(t, expected, ModelMatrix(tr, rot, sc))
}

func TestModelMatrixRotatesAroundY(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{}, mgl32.Vec3{0, 90, 0}, mgl32.Vec3{1, 1, 1})
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// cos(90°) in float32 leaves x at about -4e-08
	assertVec4(t, mgl32.Vec4{0, 0, -1, 1}, p)
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, float32(2), AspectRatio(200, 100))
	assert.Equal(t, float32(1), AspectRatio(200, 0))
}

func TestViewLooksDownNegativeZ(t *testing.T) {
	origin := View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec4(t, mgl32.Vec4{0, 0, -5, 1}, origin)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}
