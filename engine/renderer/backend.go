package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// Backend is the capability set the render core needs from a graphics API.
// Every creation call returns a ResourceHandle; failures are reported
// through its error code, never by panicking.
type Backend interface {
	Kind() metadata.BackendKind
	CreateTexture(img *metadata.ImageData) metadata.ResourceHandle
	CreateMesh(vertices []float32, layout metadata.VertexLayout) metadata.ResourceHandle
	// CompileProgram compiles both stages and links them. Compile and link
	// errors are logged by the backend and reflected in the error code.
	CompileProgram(sources metadata.ShaderSourcePair) metadata.ResourceHandle
	// UseProgram activates program. An empty handle deactivates.
	UseProgram(program metadata.ResourceHandle)
	SetSampler(program metadata.ResourceHandle, name string, unit uint32)
	SetMatrix(program metadata.ResourceHandle, name string, m mgl32.Mat4)
	BindMesh(mesh metadata.ResourceHandle)
	UnbindMesh()
	BindTexture(unit uint32, texture metadata.ResourceHandle)
	// Draw issues a triangle list draw of vertexCount vertices from the bound mesh.
	Draw(vertexCount uint32)
	Release(handle metadata.ResourceHandle)
}

// Window is the window and context collaborator.
type Window interface {
	Init() error
	Clear()
	SetClearColor(r, g, b, a float32)
	Present()
	Backend() metadata.BackendKind
	Width() uint32
	Height() uint32
}

type ImageSource interface {
	LoadImage(path string) (*metadata.ImageData, error)
}

type MeshSource interface {
	LoadMesh(path string, textures metadata.MaterialTexturePaths) (*metadata.RawMeshData, error)
}

type ShaderSource interface {
	LoadShader(path string) ([]byte, error)
}

// AssetSource bundles every loader the renderer calls.
type AssetSource interface {
	ImageSource
	MeshSource
	ShaderSource
}
