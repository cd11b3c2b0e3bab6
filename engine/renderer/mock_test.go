package renderer

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

type mockResource struct {
	kind string
	id   int
}

func (mockResource) Backend() metadata.BackendKind { return metadata.BackendOpenGL }

type call struct {
	op     string
	name   string
	unit   uint32
	count  uint32
	handle metadata.ResourceHandle
	matrix mgl32.Mat4
}

// mockBackend records every call in order.
type mockBackend struct {
	kind        metadata.BackendKind
	calls       []call
	nextID      int
	compileCode metadata.ErrorCode
	compiled    []metadata.ShaderSourcePair
	released    []metadata.ResourceHandle
	log         *[]string
}

func newMockBackend() *mockBackend {
	return &mockBackend{kind: metadata.BackendOpenGL, log: &[]string{}}
}

func (m *mockBackend) record(c call) {
	m.calls = append(m.calls, c)
	*m.log = append(*m.log, c.op)
}

func (m *mockBackend) handle(kind string) metadata.ResourceHandle {
	m.nextID++
	return metadata.NewHandle(mockResource{kind: kind, id: m.nextID})
}

func (m *mockBackend) Kind() metadata.BackendKind { return m.kind }

func (m *mockBackend) CreateTexture(img *metadata.ImageData) metadata.ResourceHandle {
	h := m.handle("texture")
	m.record(call{op: "CreateTexture", handle: h})
	return h
}

func (m *mockBackend) CreateMesh(vertices []float32, layout metadata.VertexLayout) metadata.ResourceHandle {
	h := m.handle("mesh")
	m.record(call{op: "CreateMesh", handle: h, count: uint32(len(vertices))})
	return h
}

func (m *mockBackend) CompileProgram(sources metadata.ShaderSourcePair) metadata.ResourceHandle {
	m.compiled = append(m.compiled, sources)
	h := m.handle("program")
	h.ErrorCode = m.compileCode
	m.record(call{op: "CompileProgram", handle: h})
	return h
}

func (m *mockBackend) UseProgram(program metadata.ResourceHandle) {
	m.record(call{op: "UseProgram", handle: program})
}

func (m *mockBackend) SetSampler(program metadata.ResourceHandle, name string, unit uint32) {
	m.record(call{op: "SetSampler", name: name, unit: unit, handle: program})
}

func (m *mockBackend) SetMatrix(program metadata.ResourceHandle, name string, mat mgl32.Mat4) {
	m.record(call{op: "SetMatrix", name: name, matrix: mat, handle: program})
}

func (m *mockBackend) BindMesh(mesh metadata.ResourceHandle) {
	m.record(call{op: "BindMesh", handle: mesh})
}

func (m *mockBackend) UnbindMesh() {
	m.record(call{op: "UnbindMesh"})
}

func (m *mockBackend) BindTexture(unit uint32, texture metadata.ResourceHandle) {
	m.record(call{op: "BindTexture", unit: unit, handle: texture})
}

func (m *mockBackend) Draw(vertexCount uint32) {
	m.record(call{op: "Draw", count: vertexCount})
}

func (m *mockBackend) Release(h metadata.ResourceHandle) {
	m.released = append(m.released, h)
	m.record(call{op: "Release", handle: h})
}

func (m *mockBackend) ops(op string) []call {
	var out []call
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockBackend) reset() {
	m.calls = nil
	*m.log = (*m.log)[:0]
}

type mockWindow struct {
	kind          metadata.BackendKind
	width, height uint32
	initErr       error
	clearColor    [4]float32
	log           *[]string
}

func newMockWindow(log *[]string) *mockWindow {
	return &mockWindow{kind: metadata.BackendOpenGL, width: 800, height: 600, log: log}
}

func (w *mockWindow) Init() error                      { return w.initErr }
func (w *mockWindow) Clear()                           { *w.log = append(*w.log, "Clear") }
func (w *mockWindow) SetClearColor(r, g, b, a float32) { w.clearColor = [4]float32{r, g, b, a} }
func (w *mockWindow) Present()                         { *w.log = append(*w.log, "Present") }
func (w *mockWindow) Backend() metadata.BackendKind    { return w.kind }
func (w *mockWindow) Width() uint32                    { return w.width }
func (w *mockWindow) Height() uint32                   { return w.height }

// fakeAssets serves in-memory content keyed by path.
type fakeAssets struct {
	images  map[string]*metadata.ImageData
	meshes  map[string]*metadata.RawMeshData
	shaders map[string][]byte
	// decode failures returned by LoadMesh, keyed by path
	meshErrs map[string]error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		images:   map[string]*metadata.ImageData{},
		meshes:   map[string]*metadata.RawMeshData{},
		shaders:  map[string][]byte{},
		meshErrs: map[string]error{},
	}
}

func (f *fakeAssets) LoadImage(path string) (*metadata.ImageData, error) {
	if img, ok := f.images[path]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

func (f *fakeAssets) LoadMesh(path string, textures metadata.MaterialTexturePaths) (*metadata.RawMeshData, error) {
	if err, ok := f.meshErrs[path]; ok {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if raw, ok := f.meshes[path]; ok {
		out := *raw
		out.Textures = textures
		return &out, nil
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

func (f *fakeAssets) LoadShader(path string) ([]byte, error) {
	if src, ok := f.shaders[path]; ok {
		return src, nil
	}
	return nil, errors.New("no such shader")
}

var allTextures = metadata.MaterialTexturePaths{
	Albedo:   "albedo.png",
	Normal:   "normal.png",
	Specular: "specular.png",
	Metallic: "metallic.png",
	Emission: "emission.png",
}

func (f *fakeAssets) withTextures(paths metadata.MaterialTexturePaths) *fakeAssets {
	for _, p := range paths.Slots() {
		f.images[p] = &metadata.ImageData{Width: 1, Height: 1, Channels: 4, Pixels: []uint8{1, 2, 3, 4}}
	}
	return f
}

func (f *fakeAssets) withShaders() *fakeAssets {
	f.shaders["scene.vert"] = []byte("vertex source")
	f.shaders["scene.frag"] = []byte("fragment source")
	return f
}
