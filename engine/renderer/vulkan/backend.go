package vulkan

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// Backend records the render core's calls into the command buffer of the
// current frame. Recording calls made outside BeginFrame/EndFrame are ignored.
type Backend struct {
	FrameNumber uint64

	appName    string
	context    *VulkanContext
	clearColor [4]float32

	descriptors *VulkanDescriptors
	layout      vk.PipelineLayout
	sampler     vk.Sampler
	blank       *VulkanImage

	frameActive bool
	program     *VulkanPipeline
	mesh        *VulkanBuffer
	views       materialKey
}

func New(appName string, debug bool) *Backend {
	return &Backend{
		appName: appName,
		context: NewContext(debug),
	}
}

func (b *Backend) Kind() metadata.BackendKind {
	return metadata.BackendVulkan
}

// Initialize creates the device objects for window. Nothing else on the
// backend works before it returns successfully.
func (b *Backend) Initialize(window SurfaceProvider, width, height uint32) error {
	if err := b.context.Create(window, b.appName, width, height, b.clearColor); err != nil {
		return err
	}

	descriptors, err := DescriptorsCreate(b.context)
	if err != nil {
		return err
	}
	b.descriptors = descriptors

	layouts := make([]vk.DescriptorSetLayout, 2)
	layouts[globalDescriptorSet] = descriptors.GlobalLayout
	layouts[materialDescriptorSet] = descriptors.MaterialLayout
	if b.layout, err = PipelineLayoutCreate(b.context, layouts); err != nil {
		return err
	}

	if b.sampler, err = createSampler(b.context); err != nil {
		return err
	}

	// Bound for every slot that has no texture of its own.
	if b.blank, err = uploadTexture(b.context, 1, 1, []byte{0xff, 0xff, 0xff, 0xff}); err != nil {
		return err
	}
	for i := range b.views {
		b.views[i] = b.blank.View
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (b *Backend) ready() bool {
	return b.context.Device.LogicalDevice != nil && b.descriptors != nil
}

func (b *Backend) SetClearColor(red, green, blue, alpha float32) {
	b.clearColor = [4]float32{red, green, blue, alpha}
	if b.context.MainRenderpass != nil {
		b.context.MainRenderpass.SetClearColor(red, green, blue, alpha)
	}
}

func (b *Backend) Resized(width, height uint32) {
	b.context.Resized(width, height)
}

// BeginFrame returns core.ErrSwapchainBooting when the frame must be skipped.
func (b *Backend) BeginFrame() error {
	if !b.ready() {
		return core.ErrWindowInit
	}
	if err := b.context.BeginFrame(); err != nil {
		return err
	}
	b.frameActive = true
	b.program = nil
	b.mesh = nil
	return nil
}

func (b *Backend) EndFrame() error {
	if !b.frameActive {
		return nil
	}
	b.frameActive = false
	b.program = nil
	b.mesh = nil
	if err := b.context.EndFrame(); err != nil {
		return err
	}
	b.FrameNumber++
	return nil
}

func (b *Backend) CreateTexture(img *metadata.ImageData) metadata.ResourceHandle {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return metadata.ErrorHandle(metadata.ErrorCodeLoadFailed)
	}
	if !b.ready() {
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}
	pixels, err := rgbaPixels(img)
	if err != nil {
		core.LogError("texture upload failed: %s", err)
		return metadata.ErrorHandle(metadata.ErrorCodeLoadFailed)
	}
	image, err := uploadTexture(b.context, img.Width, img.Height, pixels)
	if err != nil {
		core.LogError("texture upload failed: %s", err)
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}
	return metadata.NewHandle(Resource{Image: image})
}

func (b *Backend) CreateMesh(vertices []float32, layout metadata.VertexLayout) metadata.ResourceHandle {
	if len(vertices) == 0 || !b.ready() {
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}
	if layout.Stride != metadata.DefaultVertexLayout.Stride {
		core.LogError("vertex stride %d does not match the pipeline stride %d", layout.Stride, metadata.DefaultVertexLayout.Stride)
		return metadata.ErrorHandle(metadata.ErrorCodeUnsupported)
	}

	data := float32Bytes(vertices)
	buf, err := BufferCreate(b.context, uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyFlags(hostVisible))
	if err != nil {
		core.LogError("vertex buffer creation failed: %s", err)
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}
	if err := buf.LoadData(b.context, 0, data); err != nil {
		core.LogError("vertex upload failed: %s", err)
		buf.Destroy(b.context)
		return metadata.ErrorHandle(metadata.ErrorCodeUploadFailed)
	}
	return metadata.NewHandle(Resource{Buffer: buf})
}

// CompileProgram builds a pipeline from two SPIR-V stages. An invalid module
// maps to ErrorCodeCompileFailed and a rejected pipeline to
// ErrorCodeLinkFailed.
func (b *Backend) CompileProgram(sources metadata.ShaderSourcePair) metadata.ResourceHandle {
	if !b.ready() {
		return metadata.ErrorHandle(metadata.ErrorCodeUnsupported)
	}

	vertex, err := NewShaderStage(b.context, sources.Vertex, vk.ShaderStageVertexBit)
	if err != nil {
		core.LogError("vertex shader compilation failed: %s", err)
		return metadata.ErrorHandle(metadata.ErrorCodeCompileFailed)
	}
	fragment, err := NewShaderStage(b.context, sources.Fragment, vk.ShaderStageFragmentBit)
	if err != nil {
		core.LogError("fragment shader compilation failed: %s", err)
		vertex.Destroy(b.context)
		return metadata.ErrorHandle(metadata.ErrorCodeCompileFailed)
	}

	width, height := b.context.FramebufferWidth, b.context.FramebufferHeight
	pipeline, err := NewGraphicsPipeline(b.context, &VulkanPipelineConfig{
		Renderpass: b.context.MainRenderpass,
		Stride:     metadata.DefaultVertexLayout.StrideBytes(),
		Attributes: vertexAttributes(metadata.DefaultVertexLayout),
		Stages:     []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
		Layout:     b.layout,
		Viewport: vk.Viewport{
			Width:    float32(width),
			Height:   float32(height),
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Extent: vk.Extent2D{Width: width, Height: height},
		},
		CullMode:   vk.CullModeNone,
		DepthTest:  true,
		DepthWrite: true,
	})
	if err != nil {
		core.LogError("shader program linking failed: %s", err)
		vertex.Destroy(b.context)
		fragment.Destroy(b.context)
		return metadata.ErrorHandle(metadata.ErrorCodeLinkFailed)
	}

	return metadata.NewHandle(Resource{Program: pipeline, Vertex: vertex, Fragment: fragment})
}

// vertexAttributes maps float attributes onto vertex input descriptions.
func vertexAttributes(layout metadata.VertexLayout) []vk.VertexInputAttributeDescription {
	formats := map[uint32]vk.Format{
		1: vk.FormatR32Sfloat,
		2: vk.FormatR32g32Sfloat,
		3: vk.FormatR32g32b32Sfloat,
		4: vk.FormatR32g32b32a32Sfloat,
	}
	out := make([]vk.VertexInputAttributeDescription, 0, len(layout.Attributes))
	for _, attr := range layout.Attributes {
		format, ok := formats[attr.Components]
		if !ok {
			core.LogWarn("skipping vertex attribute %d with %d components", attr.Location, attr.Components)
			continue
		}
		out = append(out, vk.VertexInputAttributeDescription{
			Location: attr.Location,
			Binding:  0,
			Format:   format,
			Offset:   attr.Offset * 4,
		})
	}
	return out
}

func (b *Backend) UseProgram(program metadata.ResourceHandle) {
	if !b.frameActive {
		return
	}
	r, ok := payload(program)
	if !ok || r.Program == nil {
		b.program = nil
		return
	}
	b.program = r.Program

	cb := b.context.CurrentCommandBuffer()
	b.program.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, b.layout,
		globalDescriptorSet, 1, []vk.DescriptorSet{b.descriptors.GlobalSets[b.context.CurrentFrame]}, 0, nil)
}

// SetSampler is a no-op: sampler bindings are fixed by the material set layout.
func (b *Backend) SetSampler(program metadata.ResourceHandle, name string, unit uint32) {}

func (b *Backend) SetMatrix(program metadata.ResourceHandle, name string, m mgl32.Mat4) {
	if !b.frameActive {
		return
	}
	switch name {
	case metadata.UniformView:
		b.writeGlobal(0, m)
	case metadata.UniformProjection:
		b.writeGlobal(64, m)
	case metadata.UniformModel:
		if b.program == nil {
			return
		}
		vk.CmdPushConstants(b.context.CurrentCommandBuffer().Handle, b.layout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, VULKAN_PUSH_CONSTANT_SIZE, unsafe.Pointer(&m[0]))
	default:
		core.LogWarn("uniform %s not found in program", name)
	}
}

func (b *Backend) writeGlobal(offset uint64, m mgl32.Mat4) {
	if err := b.descriptors.WriteGlobal(b.context, b.context.CurrentFrame, offset, float32Bytes(m[:])); err != nil {
		core.LogError("camera uniform update failed: %s", err)
	}
}

func (b *Backend) BindMesh(mesh metadata.ResourceHandle) {
	if !b.frameActive {
		return
	}
	r, ok := payload(mesh)
	if !ok || r.Buffer == nil {
		b.mesh = nil
		return
	}
	b.mesh = r.Buffer
	vk.CmdBindVertexBuffers(b.context.CurrentCommandBuffer().Handle, 0, 1, []vk.Buffer{b.mesh.Handle}, []vk.DeviceSize{0})
}

func (b *Backend) UnbindMesh() {
	b.mesh = nil
}

// BindTexture stages the texture for unit. The material set is resolved at
// the next Draw.
func (b *Backend) BindTexture(unit uint32, texture metadata.ResourceHandle) {
	if unit >= VULKAN_MATERIAL_SAMPLER_COUNT || b.blank == nil {
		return
	}
	r, ok := payload(texture)
	if !ok || r.Image == nil {
		b.views[unit] = b.blank.View
		return
	}
	b.views[unit] = r.Image.View
}

func (b *Backend) Draw(vertexCount uint32) {
	if !b.frameActive || b.program == nil || b.mesh == nil || vertexCount == 0 {
		return
	}
	set, err := b.descriptors.MaterialSet(b.context, b.views, b.sampler)
	if err != nil {
		core.LogError("material binding failed: %s", err)
		return
	}
	cb := b.context.CurrentCommandBuffer().Handle
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, b.layout,
		materialDescriptorSet, 1, []vk.DescriptorSet{set}, 0, nil)
	vk.CmdDraw(cb, vertexCount, 1, 0, 0)
}

// Release waits for the device to go idle before destroying anything.
func (b *Backend) Release(h metadata.ResourceHandle) {
	r, ok := payload(h)
	if !ok || !b.ready() {
		return
	}
	vk.DeviceWaitIdle(b.context.Device.LogicalDevice)

	if r.Buffer != nil {
		if b.mesh == r.Buffer {
			b.mesh = nil
		}
		r.Buffer.Destroy(b.context)
	}
	if r.Image != nil {
		b.descriptors.Forget(b.context, r.Image.View)
		for i, v := range b.views {
			if v == r.Image.View {
				b.views[i] = b.blank.View
			}
		}
		r.Image.ImageDestroy(b.context)
	}
	if r.Program != nil {
		if b.program == r.Program {
			b.program = nil
		}
		r.Program.Destroy(b.context)
	}
	r.Vertex.Destroy(b.context)
	r.Fragment.Destroy(b.context)
}

// Shutdown destroys every backend object and the context. Resources still
// held by handles must be released first.
func (b *Backend) Shutdown() {
	if b.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(b.context.Device.LogicalDevice)

		if b.blank != nil {
			b.blank.ImageDestroy(b.context)
			b.blank = nil
		}
		if b.sampler != nil {
			vk.DestroySampler(b.context.Device.LogicalDevice, b.sampler, b.context.Allocator)
			b.sampler = nil
		}
		if b.layout != nil {
			vk.DestroyPipelineLayout(b.context.Device.LogicalDevice, b.layout, b.context.Allocator)
			b.layout = nil
		}
		if b.descriptors != nil {
			b.descriptors.Destroy(b.context)
			b.descriptors = nil
		}
	}
	b.context.Destroy()
	b.frameActive = false
}
