package opengl

import "github.com/spaghettifunk/ember/engine/renderer/metadata"

// Resource holds the GL object names behind a handle. Only the fields that
// apply to the handle's kind are non-zero.
type Resource struct {
	Buffer      uint32
	VertexArray uint32
	IndexBuffer uint32
	Texture     uint32
	Program     uint32
}

func (Resource) Backend() metadata.BackendKind {
	return metadata.BackendOpenGL
}

func payload(h metadata.ResourceHandle) (Resource, bool) {
	r, ok := h.Resource.(Resource)
	return r, ok
}
