package math

import "github.com/go-gl/mathgl/mgl32"

// Camera placement used by every frame: eye at (0,0,5) looking at the origin.
var (
	CameraEye    = mgl32.Vec3{0, 0, 5}
	CameraCenter = mgl32.Vec3{0, 0, 0}
	CameraUp     = mgl32.Vec3{0, 1, 0}
)

// ModelMatrix composes translation, per-axis rotation and scale as
// T * Rx * Ry * Rz * S. Rotation is expressed in degrees.
func ModelMatrix(translation, rotationDeg, scale mgl32.Vec3) mgl32.Mat4 {
	model := mgl32.Translate3D(translation[0], translation[1], translation[2])
	model = model.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rotationDeg[0])))
	model = model.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rotationDeg[1])))
	model = model.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rotationDeg[2])))
	return model.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Projection builds a right handed perspective matrix. fovDeg is the
// vertical field of view in degrees.
func Projection(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

// View returns the fixed camera view matrix.
func View() mgl32.Mat4 {
	return mgl32.LookAtV(CameraEye, CameraCenter, CameraUp)
}

// AspectRatio guards against a zero height (minimized window).
func AspectRatio(width, height uint32) float32 {
	if height == 0 {
		return 1.0
	}
	return float32(width) / float32(height)
}
