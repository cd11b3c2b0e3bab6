package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = `# a single triangle
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

const cubeOBJ = `o cube
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1
f 1/1/1 3/1/1 4/1/1
f 5 6 7
f 5 7 8
f 1 5 8
f 1 8 4
f 2 6 7
f 2 7 3
f 4 3 7
f 4 7 8
f 1 2 6
f 1 6 5
`

func decode(t *testing.T, src string) *metadata.RawMeshData {
	t.Helper()
	raw, err := (&OBJLoader{}).Decode([]byte(src), metadata.MaterialTexturePaths{})
	require.NoError(t, err)
	return raw
}

func vertexAt(raw *metadata.RawMeshData, i int) (mgl32.Vec3, mgl32.Vec3) {
	v := raw.Vertices[i*metadata.VertexFloats:]
	return mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}
}

func TestDecodeSingleTriangle(t *testing.T) {
	raw := decode(t, triangleOBJ)

	assert.Equal(t, uint32(3), raw.VertexCount)
	assert.Len(t, raw.Vertices, 18)

	p, c := vertexAt(raw, 0)
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, 0}, p)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c)

	p, c = vertexAt(raw, 1)
	assert.Equal(t, mgl32.Vec3{0.5, -0.5, 0}, p)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c)

	p, c = vertexAt(raw, 2)
	assert.Equal(t, mgl32.Vec3{-0.5, 0.5, 0}, p)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c)
}

func TestDecodeCubeCountsAndColours(t *testing.T) {
	raw := decode(t, cubeOBJ)

	assert.Equal(t, uint32(36), raw.VertexCount)
	assert.Len(t, raw.Vertices, 36*metadata.VertexFloats)
	for i := 0; i < int(raw.VertexCount); i++ {
		_, c := vertexAt(raw, i)
		for axis := 0; axis < 3; axis++ {
			assert.GreaterOrEqual(t, c[axis], float32(0))
			assert.LessOrEqual(t, c[axis], float32(1))
		}
	}
}

func TestDecodeRecentresSymmetrically(t *testing.T) {
	raw := decode(t, "v 10 20 30\nv 14 21 38\nv 12 26 31\nf 1 2 3\n")
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, -raw.Bounds.Min[axis], raw.Bounds.Max[axis], 1e-5)
	}
	assert.InDelta(t, 0, raw.Bounds.Center().Len(), 1e-5)
}

func TestDecodeFlatAxisHasFiniteColour(t *testing.T) {
	raw := decode(t, "v 0 0 2\nv 1 0 2\nv 0 1 2\nf 1 2 3\n")
	for i := 0; i < 3; i++ {
		_, c := vertexAt(raw, i)
		assert.Equal(t, float32(0), c[2])
	}
}

func TestDecodeFaceBeforeVertices(t *testing.T) {
	raw := decode(t, "f 1 2 3\nv 0 0 0\nv 1 0 0\nv 0 1 0\n")
	assert.Equal(t, uint32(3), raw.VertexCount)
}

func TestDecodeNegativeIndices(t *testing.T) {
	a := decode(t, triangleOBJ)
	b := decode(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")
	assert.Equal(t, a.Vertices, b.Vertices)
}

func TestDecodePolygonKeepsFirstTriangle(t *testing.T) {
	raw := decode(t, "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n")
	assert.Equal(t, uint32(3), raw.VertexCount)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		{"no vertices", "# nothing here\n", core.ErrNoVertices},
		{"short vertex", "v 1 2\n", core.ErrMalformedVertex},
		{"bad coordinate", "v 1 x 2\n", core.ErrMalformedVertex},
		{"nan coordinate", "v nan 0 0\nv 1 1 1\nv 0 1 0\nf 1 2 3\n", core.ErrMalformedVertex},
		{"infinite coordinate", "v 0 0 0\nv inf 1 1\nv 0 -inf 0\nf 1 2 3\n", core.ErrMalformedVertex},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", core.ErrMalformedFace},
		{"bad index token", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a b c\n", core.ErrMalformedFace},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", core.ErrFaceIndexOutOfRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", core.ErrFaceIndexOutOfRange},
		{"negative out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 1 2\n", core.ErrFaceIndexOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&OBJLoader{}).Decode([]byte(tc.src), metadata.MaterialTexturePaths{})
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodeNegativeIndexCountsFromLastDeclared(t *testing.T) {
	// -1 refers to the last vertex read before the face
	raw := decode(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 -1\nv 5 5 5\n")
	p, c := vertexAt(raw, 2)
	assert.Equal(t, mgl32.Vec3{0, 0.2, 0}, c)
	assert.InDelta(t, -2.5, p[0], 1e-6)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleOBJ), 0o644))

	textures := metadata.MaterialTexturePaths{Albedo: "a.png"}
	raw, err := (&OBJLoader{}).Load(path, textures)
	require.NoError(t, err)
	assert.Equal(t, textures, raw.Textures)
	assert.Equal(t, uint32(3), raw.VertexCount)

	_, err = (&OBJLoader{}).Load(filepath.Join(t.TempDir(), "missing.obj"), textures)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
