package renderer

import (
	"testing"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderBuilderEitherOrder(t *testing.T) {
	for _, order := range [][2]metadata.ShaderStage{
		{metadata.ShaderStageVertex, metadata.ShaderStageFragment},
		{metadata.ShaderStageFragment, metadata.ShaderStageVertex},
	} {
		backend := newMockBackend()
		sb := NewShaderBuilder(backend, newFakeAssets())

		_, err := sb.Submit(order[0], []byte("first"))
		require.NoError(t, err)
		assert.NotEqual(t, ShaderStateBothLoaded, sb.State())

		_, err = sb.Submit(order[1], []byte("second"))
		require.NoError(t, err)
		assert.Equal(t, ShaderStateBothLoaded, sb.State())

		program, err := sb.Finalize()
		require.NoError(t, err)
		assert.Equal(t, metadata.ErrorCodeNone, program.ErrorCode)
		assert.True(t, program.Ok())
		assert.Equal(t, ShaderStateLinked, sb.State())
		assert.Len(t, backend.ops("CompileProgram"), 1)
	}
}

func TestShaderBuilderVertexOnlyState(t *testing.T) {
	sb := NewShaderBuilder(newMockBackend(), newFakeAssets())
	_, err := sb.Submit(metadata.ShaderStageVertex, []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, ShaderStateVertexLoaded, sb.State())
}

func TestShaderBuilderPrematureFinalize(t *testing.T) {
	backend := newMockBackend()
	sb := NewShaderBuilder(backend, newFakeAssets())

	h, err := sb.Finalize()
	assert.ErrorIs(t, err, core.ErrShaderIncomplete)
	assert.Equal(t, metadata.ErrorCodeIncomplete, h.ErrorCode)

	_, err = sb.Submit(metadata.ShaderStageVertex, []byte("v"))
	require.NoError(t, err)
	h, err = sb.Finalize()
	assert.ErrorIs(t, err, core.ErrShaderIncomplete)
	assert.False(t, h.Ok())
	assert.Equal(t, ShaderStateVertexLoaded, sb.State())
	assert.Empty(t, backend.ops("CompileProgram"))
}

func TestShaderBuilderInvalidStage(t *testing.T) {
	backend := newMockBackend()
	sb := NewShaderBuilder(backend, newFakeAssets())

	h, err := sb.Submit(metadata.ShaderStage(7), []byte("?"))
	assert.ErrorIs(t, err, core.ErrInvalidShaderStage)
	assert.Equal(t, metadata.ErrorCodeInvalidStage, h.ErrorCode)
	assert.Equal(t, ShaderStateEmpty, sb.State())
	assert.Empty(t, backend.calls)
}

func TestShaderBuilderResubmitOverwrites(t *testing.T) {
	backend := newMockBackend()
	sb := NewShaderBuilder(backend, newFakeAssets())

	_, _ = sb.Submit(metadata.ShaderStageVertex, []byte("old"))
	_, _ = sb.Submit(metadata.ShaderStageVertex, []byte("new"))
	assert.Equal(t, ShaderStateVertexLoaded, sb.State())
	_, _ = sb.Submit(metadata.ShaderStageFragment, []byte("frag"))

	_, err := sb.Finalize()
	require.NoError(t, err)
	require.Len(t, backend.compiled, 1)
	assert.Equal(t, "new", string(backend.compiled[0].Vertex))
	assert.Equal(t, "frag", string(backend.compiled[0].Fragment))
}

func TestShaderBuilderCompileFailureIsSoft(t *testing.T) {
	backend := newMockBackend()
	backend.compileCode = metadata.ErrorCodeCompileFailed
	sb := NewShaderBuilder(backend, newFakeAssets())

	_, _ = sb.Submit(metadata.ShaderStageVertex, []byte("broken"))
	_, _ = sb.Submit(metadata.ShaderStageFragment, []byte("broken"))
	h, err := sb.Finalize()
	assert.NoError(t, err)
	assert.Equal(t, metadata.ErrorCodeCompileFailed, h.ErrorCode)
	assert.Equal(t, ShaderStateLinked, sb.State())
}

func TestShaderBuilderSubmitAfterLinkStartsOver(t *testing.T) {
	sb := NewShaderBuilder(newMockBackend(), newFakeAssets())
	_, _ = sb.Submit(metadata.ShaderStageVertex, []byte("v"))
	_, _ = sb.Submit(metadata.ShaderStageFragment, []byte("f"))
	_, err := sb.Finalize()
	require.NoError(t, err)

	_, _ = sb.Submit(metadata.ShaderStageFragment, []byte("f2"))
	assert.Equal(t, ShaderStateFragmentLoaded, sb.State())
	_, err = sb.Finalize()
	assert.ErrorIs(t, err, core.ErrShaderIncomplete)
}

func TestShaderBuilderSubmitFileMissingSubmitsEmpty(t *testing.T) {
	backend := newMockBackend()
	sb := NewShaderBuilder(backend, newFakeAssets().withShaders())

	_, err := sb.SubmitFile(metadata.ShaderStageVertex, "scene.vert")
	require.NoError(t, err)
	_, err = sb.SubmitFile(metadata.ShaderStageFragment, "missing.frag")
	require.NoError(t, err)

	_, err = sb.Finalize()
	require.NoError(t, err)
	require.Len(t, backend.compiled, 1)
	assert.Equal(t, "vertex source", string(backend.compiled[0].Vertex))
	assert.Empty(t, backend.compiled[0].Fragment)
}
