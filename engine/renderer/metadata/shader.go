package metadata

/** @brief A programmable pipeline stage. */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) Valid() bool {
	return s == ShaderStageVertex || s == ShaderStageFragment
}

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return "invalid"
}

/**
 * @brief The two stage sources of a program. GLSL text for the
 * state-machine backend, SPIR-V bytecode for the explicit one.
 */
type ShaderSourcePair struct {
	Vertex   []byte
	Fragment []byte
}

func (p *ShaderSourcePair) Clear() {
	p.Vertex = nil
	p.Fragment = nil
}

/** @brief Uniform names shared by every backend. */
const (
	UniformProjection = "uProjection"
	UniformView       = "uView"
	UniformModel      = "uModel"
)
