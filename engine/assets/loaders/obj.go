package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// OBJLoader imports the `v` and `f` records of a Wavefront OBJ file into a
// flat triangle list. Geometry is recentred on its bounding box and every
// vertex gets a colour equal to its normalized position inside that box.
type OBJLoader struct{}

func (ol *OBJLoader) Load(path string, textures metadata.MaterialTexturePaths) (*metadata.RawMeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file %s: %w", path, err)
	}
	raw, err := ol.Decode(data, textures)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	core.LogDebug("loaded OBJ %s with %d vertices", path, raw.VertexCount)
	return raw, nil
}

// Decode parses OBJ text. Face indices are checked only once every position
// is known, so faces may reference vertices declared after them. Materials
// are not read.
func (ol *OBJLoader) Decode(data []byte, textures metadata.MaterialTexturePaths) (*metadata.RawMeshData, error) {
	dec, err := obj.DecodeReader(bytes.NewReader(data), strings.NewReader(""))
	if err != nil {
		return nil, classifyDecodeError(err)
	}
	if len(dec.Warnings) > 0 {
		core.LogDebug("OBJ decoder skipped %d records: %s", len(dec.Warnings), dec.Warnings[0])
	}

	positions, err := readPositions(dec.Vertices)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, core.ErrNoVertices
	}

	bounds := math.ExtentsFromPoints(positions)
	center := bounds.Center()

	colours := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		colours[i] = bounds.Normalize(p)
		positions[i] = p.Sub(center)
	}

	faces, err := readFaces(dec, len(positions))
	if err != nil {
		return nil, err
	}

	vertices := make([]float32, 0, len(faces)*3*metadata.VertexFloats)
	for _, f := range faces {
		for _, idx := range f {
			p, c := positions[idx], colours[idx]
			vertices = append(vertices, p[0], p[1], p[2], c[0], c[1], c[2])
		}
	}

	return &metadata.RawMeshData{
		Textures:    textures,
		VertexCount: uint32(len(faces) * 3),
		Vertices:    vertices,
		Bounds:      bounds.Translate(center.Mul(-1)),
	}, nil
}

// readPositions groups the decoder's flat coordinate array into points and
// rejects NaN and infinite coordinates.
func readPositions(coords []float32) ([]mgl32.Vec3, error) {
	positions := make([]mgl32.Vec3, 0, len(coords)/3)
	for i := 0; i+2 < len(coords); i += 3 {
		p := mgl32.Vec3{coords[i], coords[i+1], coords[i+2]}
		for _, c := range p {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				return nil, fmt.Errorf("%w: vertex %d has a non-finite coordinate %v", core.ErrMalformedVertex, len(positions)+1, p)
			}
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// readFaces keeps the first triangle of every face, in file order.
func readFaces(dec *obj.Decoder, vertexCount int) ([][3]int, error) {
	var faces [][3]int
	warned := false
	for _, o := range dec.Objects {
		for _, f := range o.Faces {
			if len(f.Vertices) < 3 {
				return nil, fmt.Errorf("%w: expected 3 vertices, got %d", core.ErrMalformedFace, len(f.Vertices))
			}
			if len(f.Vertices) > 3 && !warned {
				core.LogWarn("object %s: face with %d vertices, only the first triangle is kept", o.Name, len(f.Vertices))
				warned = true
			}
			var face [3]int
			for i := 0; i < 3; i++ {
				idx := f.Vertices[i]
				if idx < 0 || idx >= vertexCount {
					return nil, fmt.Errorf("%w: %d with %d vertices", core.ErrFaceIndexOutOfRange, idx+1, vertexCount)
				}
				face[i] = idx
			}
			faces = append(faces, face)
		}
	}
	return faces, nil
}

// classifyDecodeError maps a decoder failure onto the OBJ error sentinels.
// Integer parse failures only come from face records, float ones from
// vertex records.
func classifyDecodeError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if numErr.Func == "ParseInt" {
			return fmt.Errorf("%w: %v", core.ErrMalformedFace, err)
		}
		return fmt.Errorf("%w: %v", core.ErrMalformedVertex, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "equal to 0"):
		return fmt.Errorf("%w: %v", core.ErrFaceIndexOutOfRange, err)
	case strings.Contains(msg, "face"):
		return fmt.Errorf("%w: %v", core.ErrMalformedFace, err)
	}
	return fmt.Errorf("%w: %v", core.ErrMalformedVertex, err)
}
