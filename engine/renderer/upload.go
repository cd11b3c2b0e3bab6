package renderer

import (
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// UploadStats counts what an Uploader pushed to the GPU.
type UploadStats struct {
	Meshes          int
	TexturesCreated int
	TexturesFailed  int
}

// Uploader moves decoded meshes and images into backend resources.
type Uploader struct {
	backend Backend
	assets  AssetSource
	stats   UploadStats
}

func NewUploader(backend Backend, assets AssetSource) *Uploader {
	return &Uploader{
		backend: backend,
		assets:  assets,
	}
}

func (u *Uploader) Stats() UploadStats {
	return u.stats
}

// UploadTexture creates one texture per call. A path that cannot be read or
// decoded yields an ErrorCodeLoadFailed handle.
func (u *Uploader) UploadTexture(path string) metadata.ResourceHandle {
	if path == "" {
		core.LogWarn("no texture path given")
		u.stats.TexturesFailed++
		return metadata.ErrorHandle(metadata.ErrorCodeLoadFailed)
	}
	img, err := u.assets.LoadImage(path)
	if err != nil {
		core.LogError("failed to load texture %s: %s", path, err)
		u.stats.TexturesFailed++
		return metadata.ErrorHandle(metadata.ErrorCodeLoadFailed)
	}
	h := u.backend.CreateTexture(img)
	if h.ErrorCode != metadata.ErrorCodeNone {
		core.LogError("failed to create texture %s: %s", path, h.ErrorCode)
		u.stats.TexturesFailed++
		return h
	}
	u.stats.TexturesCreated++
	return h
}

// UploadMesh creates the vertex buffer and then the five material textures
// in slot order. A failing texture only marks its own slot.
func (u *Uploader) UploadMesh(raw *metadata.RawMeshData) *metadata.GpuMesh {
	mesh := &metadata.GpuMesh{
		Mesh:        u.backend.CreateMesh(raw.Vertices, metadata.DefaultVertexLayout),
		VertexCount: raw.VertexCount,
	}
	if mesh.Mesh.ErrorCode != metadata.ErrorCodeNone {
		core.LogError("failed to create vertex buffer: %s", mesh.Mesh.ErrorCode)
	}

	paths := raw.Textures.Slots()
	for slot := metadata.TextureSlotAlbedo; slot < metadata.TextureSlotCount; slot++ {
		mesh.Textures.Set(slot, u.UploadTexture(paths[slot]))
	}
	u.stats.Meshes++
	core.LogDebug("uploaded mesh with %d vertices", mesh.VertexCount)
	return mesh
}

// LoadMesh imports an OBJ file and uploads it. Import errors are returned
// unchanged; callers treat them as fatal.
func (u *Uploader) LoadMesh(path string, textures metadata.MaterialTexturePaths) (*metadata.GpuMesh, error) {
	raw, err := u.assets.LoadMesh(path, textures)
	if err != nil {
		return nil, err
	}
	mesh := u.UploadMesh(raw)
	mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return mesh, nil
}
