package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitializeIndexesKnownAssets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "tri.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	writeFile(t, filepath.Join(root, "shaders", "scene.vert"), "void main() {}")
	writeFile(t, filepath.Join(root, "README"), "ignored")

	am := NewAssetManager()
	require.NoError(t, am.Initialize(root))

	list := am.Assets()
	require.Len(t, list, 2)
	assert.Equal(t, AssetTypeMesh, list[0].Type)
	assert.Equal(t, AssetTypeShaderSource, list[1].Type)
}

func TestLoadMeshResolvesAgainstRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "tri.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	am := NewAssetManager()
	require.NoError(t, am.Initialize(root))

	raw, err := am.LoadMesh("models/tri.obj", metadata.MaterialTexturePaths{})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), raw.VertexCount)

	for _, a := range am.Assets() {
		if a.Type == AssetTypeMesh {
			assert.False(t, a.LastLoaded.IsZero())
		}
	}
}

func TestLoadShaderByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "s.frag"), "void main() {}")
	writeFile(t, filepath.Join(root, "s.spv"), "not spirv")

	am := NewAssetManager()
	require.NoError(t, am.Initialize(root))

	src, err := am.LoadShader("s.frag")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", string(src))

	_, err = am.LoadShader("s.spv")
	assert.Error(t, err)

	_, err = am.LoadShader("s.obj")
	assert.Error(t, err)
}

func TestInitializeMissingRoot(t *testing.T) {
	am := NewAssetManager()
	assert.NoError(t, am.Initialize(filepath.Join(t.TempDir(), "nowhere")))
	assert.Empty(t, am.Assets())
}
