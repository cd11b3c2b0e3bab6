package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// Backend drives an OpenGL 4.1 core context. The context must be current on
// the calling thread and gl.Init must already have run.
type Backend struct {
	uniforms map[uint32]map[string]int32
}

func New() *Backend {
	return &Backend{
		uniforms: make(map[uint32]map[string]int32),
	}
}

func (b *Backend) Kind() metadata.BackendKind {
	return metadata.BackendOpenGL
}

func (b *Backend) CreateTexture(img *metadata.ImageData) metadata.ResourceHandle {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return metadata.ErrorHandle(metadata.ErrorCodeLoadFailed)
	}
	format := uint32(gl.RGB)
	if img.Channels == 4 {
		format = gl.RGBA
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	// RGB rows are not 4 byte aligned in general
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(img.Width), int32(img.Height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(img.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return metadata.NewHandle(Resource{Texture: texture})
}

func (b *Backend) CreateMesh(vertices []float32, layout metadata.VertexLayout) metadata.ResourceHandle {
	if len(vertices) == 0 {
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(layout.StrideBytes())
	for _, attr := range layout.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointer(attr.Location, int32(attr.Components), gl.FLOAT, false, stride, gl.PtrOffset(int(attr.Offset)*4))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return metadata.NewHandle(Resource{Buffer: vbo, VertexArray: vao})
}

func (b *Backend) CompileProgram(sources metadata.ShaderSourcePair) metadata.ResourceHandle {
	code := metadata.ErrorCodeNone

	vertex, err := compileShader(string(sources.Vertex), gl.VERTEX_SHADER)
	if err != nil {
		core.LogError("%s shader compilation failed: %s", shaderTypeName(gl.VERTEX_SHADER), err)
		code = metadata.ErrorCodeCompileFailed
	}
	fragment, err := compileShader(string(sources.Fragment), gl.FRAGMENT_SHADER)
	if err != nil {
		core.LogError("%s shader compilation failed: %s", shaderTypeName(gl.FRAGMENT_SHADER), err)
		code = metadata.ErrorCodeCompileFailed
	}

	program, err := linkProgram(vertex, fragment)
	if err != nil {
		core.LogError("shader program linking failed: %s", err)
		if code == metadata.ErrorCodeNone {
			code = metadata.ErrorCodeLinkFailed
		}
	}

	gl.DeleteShader(vertex)
	gl.DeleteShader(fragment)

	return metadata.ResourceHandle{ErrorCode: code, Resource: Resource{Program: program}}
}

func (b *Backend) UseProgram(program metadata.ResourceHandle) {
	r, ok := payload(program)
	if !ok {
		gl.UseProgram(0)
		return
	}
	gl.UseProgram(r.Program)
}

func (b *Backend) location(program uint32, name string) int32 {
	cache, ok := b.uniforms[program]
	if !ok {
		cache = make(map[string]int32)
		b.uniforms[program] = cache
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		core.LogWarn("uniform %s not found in program %d", name, program)
	}
	cache[name] = loc
	return loc
}

func (b *Backend) SetSampler(program metadata.ResourceHandle, name string, unit uint32) {
	r, ok := payload(program)
	if !ok {
		return
	}
	if loc := b.location(r.Program, name); loc >= 0 {
		gl.Uniform1i(loc, int32(unit))
	}
}

func (b *Backend) SetMatrix(program metadata.ResourceHandle, name string, m mgl32.Mat4) {
	r, ok := payload(program)
	if !ok {
		return
	}
	if loc := b.location(r.Program, name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

func (b *Backend) BindMesh(mesh metadata.ResourceHandle) {
	r, _ := payload(mesh)
	gl.BindVertexArray(r.VertexArray)
}

func (b *Backend) UnbindMesh() {
	gl.BindVertexArray(0)
}

func (b *Backend) BindTexture(unit uint32, texture metadata.ResourceHandle) {
	r, _ := payload(texture)
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, r.Texture)
}

func (b *Backend) Draw(vertexCount uint32) {
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount))
}

func (b *Backend) Release(h metadata.ResourceHandle) {
	r, ok := payload(h)
	if !ok {
		return
	}
	if r.VertexArray != 0 {
		gl.DeleteVertexArrays(1, &r.VertexArray)
	}
	if r.Buffer != 0 {
		gl.DeleteBuffers(1, &r.Buffer)
	}
	if r.IndexBuffer != 0 {
		gl.DeleteBuffers(1, &r.IndexBuffer)
	}
	if r.Texture != 0 {
		gl.DeleteTextures(1, &r.Texture)
	}
	if r.Program != 0 {
		delete(b.uniforms, r.Program)
		gl.DeleteProgram(r.Program)
	}
}
