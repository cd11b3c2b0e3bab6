package renderer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/assets"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initializedPipeline(t *testing.T, assets AssetSource) (*Pipeline, *mockBackend, *mockWindow) {
	t.Helper()
	backend := newMockBackend()
	window := newMockWindow(backend.log)
	p := NewPipeline(backend, assets, 45, 0.1, 100)
	require.NoError(t, p.Initialize("scene.vert", "scene.frag", window))
	backend.reset()
	return p, backend, window
}

func uploadedTriangle(t *testing.T, backend Backend, assets AssetSource) *metadata.GpuMesh {
	t.Helper()
	raw := triangleRaw()
	raw.Textures = allTextures
	return NewUploader(backend, assets).UploadMesh(raw)
}

func TestPipelineInitialize(t *testing.T) {
	backend := newMockBackend()
	window := newMockWindow(backend.log)
	p := NewPipeline(backend, newFakeAssets().withShaders(), 45, 0.1, 100)

	require.NoError(t, p.Initialize("scene.vert", "scene.frag", window))
	assert.Equal(t, PipelineInitialized, p.State())
	assert.True(t, p.ShaderProgram.Ok())
	assert.InDelta(t, 800.0/600.0, p.Aspect, 1e-6)

	samplers := backend.ops("SetSampler")
	require.Len(t, samplers, 5)
	expected := []string{"uAlbedo", "uNormal", "uSpecular", "uMetallic", "uEmission"}
	for i, c := range samplers {
		assert.Equal(t, expected[i], c.name)
		assert.Equal(t, uint32(i), c.unit)
	}

	use := backend.ops("UseProgram")
	require.Len(t, use, 1)
	assert.Equal(t, p.ShaderProgram, use[0].handle)
}

func TestPipelineInitializeWindowFailure(t *testing.T) {
	backend := newMockBackend()
	window := newMockWindow(backend.log)
	window.initErr = errors.New("no display")
	p := NewPipeline(backend, newFakeAssets().withShaders(), 45, 0.1, 100)

	err := p.Initialize("scene.vert", "scene.frag", window)
	assert.ErrorIs(t, err, core.ErrWindowInit)
	assert.Equal(t, PipelineConstructed, p.State())
	assert.Empty(t, backend.ops("CompileProgram"))
}

func TestPipelineInitializeBackendMismatch(t *testing.T) {
	backend := newMockBackend()
	window := newMockWindow(backend.log)
	window.kind = metadata.BackendVulkan
	p := NewPipeline(backend, newFakeAssets().withShaders(), 45, 0.1, 100)

	assert.ErrorIs(t, p.Initialize("scene.vert", "scene.frag", window), core.ErrBackendMismatch)
}

func TestPipelineRenderBeforeInitialize(t *testing.T) {
	p := NewPipeline(newMockBackend(), newFakeAssets(), 45, 0.1, 100)
	assert.ErrorIs(t, p.Render(), core.ErrPipelineNotInitialized)
}

func TestPipelineRenderSingleObject(t *testing.T) {
	assets := newFakeAssets().withShaders().withTextures(allTextures)
	p, backend, _ := initializedPipeline(t, assets)
	mesh := uploadedTriangle(t, backend, assets)
	backend.reset()

	p.AddObject(metadata.NewWorldObject("tri", mesh))
	require.NoError(t, p.Render())

	draws := backend.ops("Draw")
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(3), draws[0].count)

	binds := backend.ops("BindMesh")
	require.Len(t, binds, 1)
	assert.Equal(t, mesh.Mesh, binds[0].handle)

	textures := backend.ops("BindTexture")
	require.Len(t, textures, 5)
	slots := mesh.Textures.Slots()
	for i, c := range textures {
		assert.Equal(t, uint32(i), c.unit)
		assert.Equal(t, slots[i], c.handle)
	}

	models := []call{}
	for _, c := range backend.ops("SetMatrix") {
		if c.name == metadata.UniformModel {
			models = append(models, c)
		}
	}
	require.Len(t, models, 1)
	assert.True(t, models[0].matrix.ApproxEqual(mgl32.Ident4()))

	assert.Equal(t, PipelineRendering, p.State())
}

func TestPipelineRenderSequence(t *testing.T) {
	assets := newFakeAssets().withShaders().withTextures(allTextures)
	p, backend, _ := initializedPipeline(t, assets)
	mesh := uploadedTriangle(t, backend, assets)
	backend.reset()

	p.AddObject(metadata.NewWorldObject("tri", mesh))
	require.NoError(t, p.Render())

	assert.Equal(t, []string{
		"Clear",
		"UseProgram",
		"SetMatrix", "SetMatrix",
		"SetMatrix", "BindMesh",
		"BindTexture", "BindTexture", "BindTexture", "BindTexture", "BindTexture",
		"Draw", "UnbindMesh",
		"UseProgram",
		"Present",
	}, *backend.log)

	use := backend.ops("UseProgram")
	assert.True(t, use[1].handle.Empty())

	matrices := backend.ops("SetMatrix")
	assert.Equal(t, metadata.UniformProjection, matrices[0].name)
	assert.True(t, matrices[0].matrix.ApproxEqual(math.Projection(45, 800.0/600.0, 0.1, 100)))
	assert.Equal(t, metadata.UniformView, matrices[1].name)
	assert.True(t, matrices[1].matrix.ApproxEqual(math.View()))
}

func TestPipelineRenderOrder(t *testing.T) {
	assets := newFakeAssets().withShaders().withTextures(allTextures)
	p, backend, _ := initializedPipeline(t, assets)

	meshA := uploadedTriangle(t, backend, assets)
	meshB := uploadedTriangle(t, backend, assets)
	meshB.VertexCount = 6
	backend.reset()

	p.AddObject(metadata.NewWorldObject("A", meshA))
	p.AddObject(metadata.NewWorldObject("B", meshB))

	for frame := 0; frame < 3; frame++ {
		backend.reset()
		require.NoError(t, p.Render())

		binds := backend.ops("BindMesh")
		require.Len(t, binds, 2)
		assert.Equal(t, meshA.Mesh, binds[0].handle)
		assert.Equal(t, meshB.Mesh, binds[1].handle)

		draws := backend.ops("Draw")
		require.Len(t, draws, 2)
		assert.Equal(t, uint32(3), draws[0].count)
		assert.Equal(t, uint32(6), draws[1].count)
	}
}

func TestPipelineModelMatrixPerObject(t *testing.T) {
	assets := newFakeAssets().withShaders().withTextures(allTextures)
	p, backend, _ := initializedPipeline(t, assets)
	mesh := uploadedTriangle(t, backend, assets)
	backend.reset()

	o := metadata.NewWorldObject("moved", mesh)
	o.Transform = mgl32.Vec3{1, 2, 3}
	o.Rotation = mgl32.Vec3{10, 20, 30}
	o.Scale = mgl32.Vec3{2, 2, 2}
	p.AddObject(o)
	require.NoError(t, p.Render())

	for _, c := range backend.ops("SetMatrix") {
		if c.name == metadata.UniformModel {
			assert.True(t, c.matrix.ApproxEqual(math.ModelMatrix(o.Transform, o.Rotation, o.Scale)))
		}
	}
}

func TestPipelineSkipsUndrawableMeshes(t *testing.T) {
	assets := newFakeAssets().withShaders().withTextures(allTextures)
	p, backend, _ := initializedPipeline(t, assets)
	good := uploadedTriangle(t, backend, assets)
	empty := uploadedTriangle(t, backend, assets)
	empty.VertexCount = 0
	backend.reset()

	p.AddObject(metadata.NewWorldObject("empty", empty))
	p.AddObject(metadata.NewWorldObject("nil mesh", nil))
	p.AddObject(metadata.NewWorldObject("good", good))
	require.NoError(t, p.Render())

	draws := backend.ops("Draw")
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(3), draws[0].count)
}

func TestPipelineRemoveObjectKeepsOrder(t *testing.T) {
	p := NewPipeline(newMockBackend(), newFakeAssets(), 45, 0.1, 100)
	a := metadata.NewWorldObject("a", nil)
	b := metadata.NewWorldObject("b", nil)
	c := metadata.NewWorldObject("c", nil)
	p.AddObject(a)
	p.AddObject(b)
	p.AddObject(c)

	assert.True(t, p.RemoveObject(b))
	assert.False(t, p.RemoveObject(b))
	assert.Equal(t, []*metadata.WorldObject{a, c}, p.WorldObjects)
}

func TestPipelineShutdownReleasesProgram(t *testing.T) {
	p, backend, _ := initializedPipeline(t, newFakeAssets().withShaders())
	program := p.ShaderProgram

	p.Shutdown()
	require.Len(t, backend.released, 1)
	assert.Equal(t, program, backend.released[0])
	assert.ErrorIs(t, p.Render(), core.ErrPipelineNotInitialized)
}

func TestPipelineSetAspect(t *testing.T) {
	p := NewPipeline(newMockBackend(), newFakeAssets(), 45, 0.1, 100)
	p.SetAspect(1920, 1080)
	assert.InDelta(t, 16.0/9.0, p.Aspect, 1e-6)
	p.SetAspect(1920, 0)
	assert.Equal(t, float32(1), p.Aspect)
}

// A one-face OBJ read from disk through the asset manager, uploaded and drawn.
func TestEndToEndSingleFace(t *testing.T) {
	dir := t.TempDir()
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 5 5 5\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(obj), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.vert"), []byte("vertex"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.frag"), []byte("fragment"), 0o644))

	am := assets.NewAssetManager()
	require.NoError(t, am.Initialize(dir))

	backend := newMockBackend()
	window := newMockWindow(backend.log)
	r := New(window, backend, am, core.CameraConfig{FOV: 45, Near: 0.1, Far: 100})
	require.NoError(t, r.Initialize(filepath.Join(dir, "scene.vert"), filepath.Join(dir, "scene.frag")))

	mesh, err := r.LoadMesh(filepath.Join(dir, "tri.obj"), metadata.MaterialTexturePaths{})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), mesh.VertexCount)
	creates := backend.ops("CreateMesh")
	require.Len(t, creates, 1)
	assert.Equal(t, uint32(3*metadata.VertexFloats), creates[0].count)

	// texture files are absent, so every slot is error-marked but bound
	for _, h := range mesh.Textures.Slots() {
		assert.Equal(t, metadata.ErrorCodeLoadFailed, h.ErrorCode)
	}

	r.Spawn("tri", mesh, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	backend.reset()
	require.NoError(t, r.DrawFrame())

	assert.Len(t, backend.ops("Draw"), 1)
	assert.Len(t, backend.ops("BindMesh"), 1)
	units := []uint32{}
	for _, c := range backend.ops("BindTexture") {
		units = append(units, c.unit)
	}
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, units)

	r.Shutdown()
	// the mesh buffer and the program; failed textures own nothing
	assert.Len(t, backend.released, 2)
}
