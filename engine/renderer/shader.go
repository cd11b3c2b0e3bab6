package renderer

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

type ShaderState int

const (
	ShaderStateEmpty ShaderState = iota
	ShaderStateVertexLoaded
	ShaderStateFragmentLoaded
	ShaderStateBothLoaded
	ShaderStateLinked
)

func (s ShaderState) String() string {
	switch s {
	case ShaderStateEmpty:
		return "empty"
	case ShaderStateVertexLoaded:
		return "vertex loaded"
	case ShaderStateFragmentLoaded:
		return "fragment loaded"
	case ShaderStateBothLoaded:
		return "both loaded"
	case ShaderStateLinked:
		return "linked"
	}
	return "unknown"
}

// ShaderBuilder accumulates the two stage sources of a program and turns
// them into one program on Finalize.
type ShaderBuilder struct {
	backend Backend
	source  ShaderSource

	sources     metadata.ShaderSourcePair
	hasVertex   bool
	hasFragment bool
	state       ShaderState
}

func NewShaderBuilder(backend Backend, source ShaderSource) *ShaderBuilder {
	return &ShaderBuilder{
		backend: backend,
		source:  source,
		state:   ShaderStateEmpty,
	}
}

func (sb *ShaderBuilder) State() ShaderState {
	return sb.state
}

// Submit stores source for stage. Stages may arrive in any order and a
// second submit for the same stage replaces the first.
func (sb *ShaderBuilder) Submit(stage metadata.ShaderStage, source []byte) (metadata.ResourceHandle, error) {
	if !stage.Valid() {
		core.LogError("rejected shader source for stage %d", int(stage))
		return metadata.ErrorHandle(metadata.ErrorCodeInvalidStage), fmt.Errorf("%w: %d", core.ErrInvalidShaderStage, int(stage))
	}
	if sb.state == ShaderStateLinked {
		sb.reset()
	}

	switch stage {
	case metadata.ShaderStageVertex:
		sb.sources.Vertex = source
		sb.hasVertex = true
	case metadata.ShaderStageFragment:
		sb.sources.Fragment = source
		sb.hasFragment = true
	}

	switch {
	case sb.hasVertex && sb.hasFragment:
		sb.state = ShaderStateBothLoaded
	case sb.hasVertex:
		sb.state = ShaderStateVertexLoaded
	case sb.hasFragment:
		sb.state = ShaderStateFragmentLoaded
	}
	return metadata.ResourceHandle{}, nil
}

// SubmitFile reads the stage source through the shader source. An
// unreadable file is logged and submitted as empty source, which then fails
// to compile.
func (sb *ShaderBuilder) SubmitFile(stage metadata.ShaderStage, path string) (metadata.ResourceHandle, error) {
	data, err := sb.source.LoadShader(path)
	if err != nil {
		core.LogError("failed to load %s shader %s: %s", stage, path, err)
		data = nil
	}
	return sb.Submit(stage, data)
}

// Finalize compiles and links the accumulated stages. It refuses to run
// until both stages are present. Compile or link failures come back as an
// error-coded handle with a nil error.
func (sb *ShaderBuilder) Finalize() (metadata.ResourceHandle, error) {
	if sb.state != ShaderStateBothLoaded {
		return metadata.ErrorHandle(metadata.ErrorCodeIncomplete), fmt.Errorf("%w: state is %s", core.ErrShaderIncomplete, sb.state)
	}

	program := sb.backend.CompileProgram(sb.sources)
	if program.ErrorCode != metadata.ErrorCodeNone {
		core.LogError("shader program built with errors: %s", program.ErrorCode)
	}

	sb.sources.Clear()
	sb.hasVertex = false
	sb.hasFragment = false
	sb.state = ShaderStateLinked
	return program, nil
}

func (sb *ShaderBuilder) reset() {
	sb.sources.Clear()
	sb.hasVertex = false
	sb.hasFragment = false
	sb.state = ShaderStateEmpty
}
