package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/ember/engine/math"
)

/** @brief Number of floats per interleaved vertex: position xyz + colour rgb. */
const VertexFloats = 6

/** @brief A single vertex attribute inside an interleaved buffer. */
type VertexAttribute struct {
	Location   uint32
	Components uint32
	/** @brief Offset in floats from the start of the vertex. */
	Offset uint32
}

/** @brief Describes how interleaved float data maps onto shader inputs. */
type VertexLayout struct {
	/** @brief Stride in floats. */
	Stride     uint32
	Attributes []VertexAttribute
}

// StrideBytes returns the stride in bytes.
func (l VertexLayout) StrideBytes() uint32 {
	return l.Stride * 4
}

/** @brief position at location 0, colour at location 1, six float stride. */
var DefaultVertexLayout = VertexLayout{
	Stride: VertexFloats,
	Attributes: []VertexAttribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 3},
	},
}

/**
 * @brief CPU side geometry produced by the importer, ready for upload.
 */
type RawMeshData struct {
	Textures MaterialTexturePaths
	/** @brief Number of vertices, len(Vertices) / VertexFloats. */
	VertexCount uint32
	/** @brief Interleaved x,y,z,r,g,b per vertex. */
	Vertices []float32
	/** @brief Bounding box after recentring. */
	Bounds math.Extents3D
}

// Releaser frees GPU resources. Implemented by every renderer backend.
type Releaser interface {
	Release(h ResourceHandle)
}

/**
 * @brief An uploaded mesh: its vertex buffer, its material textures and the
 * number of vertices to draw. Immutable after upload.
 */
type GpuMesh struct {
	Name        string
	Mesh        ResourceHandle
	Textures    MaterialTextureSet
	VertexCount uint32
}

// Renderable reports whether the mesh can be drawn this frame.
func (m *GpuMesh) Renderable() bool {
	return m != nil && m.Mesh.Ok() && m.VertexCount > 0 && m.Textures.Complete()
}

// Release frees the vertex buffer and every created texture and resets the mesh.
func (m *GpuMesh) Release(r Releaser) {
	if m.Mesh.Resource != nil {
		r.Release(m.Mesh)
	}
	for _, h := range m.Textures.Slots() {
		if h.Resource != nil {
			r.Release(h)
		}
	}
	*m = GpuMesh{Name: m.Name}
}

/**
 * @brief A placed instance of a mesh in the scene. Rotation is in degrees.
 */
type WorldObject struct {
	ID        uuid.UUID
	Name      string
	Mesh      *GpuMesh
	Transform mgl32.Vec3
	Rotation  mgl32.Vec3
	Scale     mgl32.Vec3
	/** @brief Degrees per second added to Rotation by the scene update. */
	Spin mgl32.Vec3
}

func NewWorldObject(name string, mesh *GpuMesh) *WorldObject {
	return &WorldObject{
		ID:    uuid.New(),
		Name:  name,
		Mesh:  mesh,
		Scale: mgl32.Vec3{1, 1, 1},
	}
}

// ModelMatrix returns T * Rx * Ry * Rz * S for the object's current state.
func (o *WorldObject) ModelMatrix() mgl32.Mat4 {
	return math.ModelMatrix(o.Transform, o.Rotation, o.Scale)
}

// Advance applies Spin for deltaTime seconds, wrapping each angle to [0,360).
func (o *WorldObject) Advance(deltaTime float64) {
	for i := 0; i < 3; i++ {
		r := o.Rotation[i] + o.Spin[i]*float32(deltaTime)
		for r >= 360 {
			r -= 360
		}
		for r < 0 {
			r += 360
		}
		o.Rotation[i] = r
	}
}
