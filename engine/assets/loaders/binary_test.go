package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToBytecode(t *testing.T) {
	words := BytesToBytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00})
	assert.Equal(t, []uint32{SPIRVMagic, 1}, words)
}

func TestBinaryLoaderValidates(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.spv")
	require.NoError(t, os.WriteFile(good, []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}, 0o644))
	data, err := (&BinaryLoader{}).Load(good)
	require.NoError(t, err)
	assert.Len(t, data, 8)

	bad := filepath.Join(dir, "bad.spv")
	require.NoError(t, os.WriteFile(bad, []byte("#version 450\n"), 0o644))
	_, err = (&BinaryLoader{}).Load(bad)
	assert.Error(t, err)
}

func TestShaderLoaderReadsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.vert")
	src := "#version 330 core\nvoid main() {}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	data, err := (&ShaderLoader{}).Load(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(data))
}
