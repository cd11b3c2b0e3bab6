package renderer

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

type PipelineState int

const (
	PipelineConstructed PipelineState = iota
	PipelineInitialized
	PipelineRendering
)

// Pipeline owns the scene program and draws the world objects in list order.
type Pipeline struct {
	ShaderProgram metadata.ResourceHandle
	WorldObjects  []*metadata.WorldObject
	// Materials is kept for callers; drawing uses each mesh's own textures.
	Materials []*metadata.MaterialTextureSet

	FOV       float32
	Aspect    float32
	NearPlane float32
	FarPlane  float32

	window  Window
	backend Backend
	shaders *ShaderBuilder
	state   PipelineState
}

func NewPipeline(backend Backend, shaders ShaderSource, fov, near, far float32) *Pipeline {
	return &Pipeline{
		FOV:       fov,
		Aspect:    1.0,
		NearPlane: near,
		FarPlane:  far,
		backend:   backend,
		shaders:   NewShaderBuilder(backend, shaders),
		state:     PipelineConstructed,
	}
}

func (p *Pipeline) State() PipelineState {
	return p.state
}

// Initialize brings up the window, builds the program from the two stage
// files and binds the material samplers to units 0..4.
func (p *Pipeline) Initialize(vertexPath, fragmentPath string, window Window) error {
	p.window = window
	if err := window.Init(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrWindowInit, err)
	}
	if window.Backend() != p.backend.Kind() {
		return fmt.Errorf("%w: window is %s, renderer is %s", core.ErrBackendMismatch, window.Backend(), p.backend.Kind())
	}

	if _, err := p.shaders.SubmitFile(metadata.ShaderStageVertex, vertexPath); err != nil {
		return err
	}
	if _, err := p.shaders.SubmitFile(metadata.ShaderStageFragment, fragmentPath); err != nil {
		return err
	}
	program, err := p.shaders.Finalize()
	if err != nil {
		return err
	}
	p.ShaderProgram = program

	p.backend.UseProgram(p.ShaderProgram)
	for slot := metadata.TextureSlotAlbedo; slot < metadata.TextureSlotCount; slot++ {
		p.backend.SetSampler(p.ShaderProgram, metadata.TextureSlotSamplers[slot], slot.Unit())
	}

	p.Aspect = math.AspectRatio(window.Width(), window.Height())
	p.state = PipelineInitialized
	core.LogInfo("render pipeline initialized on %s (%dx%d)", p.backend.Kind(), window.Width(), window.Height())
	return nil
}

// SetAspect recomputes the aspect ratio after a framebuffer resize.
func (p *Pipeline) SetAspect(width, height uint32) {
	p.Aspect = math.AspectRatio(width, height)
}

func (p *Pipeline) AddObject(o *metadata.WorldObject) {
	p.WorldObjects = append(p.WorldObjects, o)
}

// RemoveObject drops o from the draw list, keeping the order of the rest.
func (p *Pipeline) RemoveObject(o *metadata.WorldObject) bool {
	for i, w := range p.WorldObjects {
		if w == o {
			p.WorldObjects = append(p.WorldObjects[:i], p.WorldObjects[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Pipeline) AddMaterial(m *metadata.MaterialTextureSet) {
	p.Materials = append(p.Materials, m)
}

// Render draws one frame. Objects whose mesh cannot be drawn are skipped.
func (p *Pipeline) Render() error {
	if p.state == PipelineConstructed {
		return core.ErrPipelineNotInitialized
	}
	p.state = PipelineRendering

	p.window.Clear()
	p.backend.UseProgram(p.ShaderProgram)

	projection := math.Projection(p.FOV, p.Aspect, p.NearPlane, p.FarPlane)
	view := math.View()
	p.backend.SetMatrix(p.ShaderProgram, metadata.UniformProjection, projection)
	p.backend.SetMatrix(p.ShaderProgram, metadata.UniformView, view)

	for _, o := range p.WorldObjects {
		if o == nil || !o.Mesh.Renderable() {
			core.LogDebug("skipping object without a drawable mesh")
			continue
		}
		p.backend.SetMatrix(p.ShaderProgram, metadata.UniformModel, o.ModelMatrix())
		p.backend.BindMesh(o.Mesh.Mesh)
		for i, tex := range o.Mesh.Textures.Slots() {
			p.backend.BindTexture(uint32(i), tex)
		}
		p.backend.Draw(o.Mesh.VertexCount)
		p.backend.UnbindMesh()
	}

	p.backend.UseProgram(metadata.ResourceHandle{})
	p.window.Present()
	return nil
}

// Shutdown releases the program. Meshes belong to their owners.
func (p *Pipeline) Shutdown() {
	if p.ShaderProgram.Resource != nil {
		p.backend.Release(p.ShaderProgram)
	}
	p.ShaderProgram = metadata.ResourceHandle{}
	p.WorldObjects = nil
	p.state = PipelineConstructed
}
