package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// VulkanBuffer is a buffer bound to its own allocation. Host-visible buffers
// can be mapped once and kept mapped for their whole life.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags

	mapped unsafe.Pointer
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("cannot create an empty buffer")
	}
	outBuffer := &VulkanBuffer{
		Size:   vk.DeviceSize(size),
		Usage:  usage,
		Memory: vk.NullDeviceMemory,
		Handle: vk.NullBuffer,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        outBuffer.Size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, VulkanError("vkCreateBuffer", res)
	}
	outBuffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, outBuffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if memoryIndex == -1 {
		outBuffer.Destroy(context)
		return nil, fmt.Errorf("unable to create vulkan buffer because the required memory type index was not found")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}

	err := context.locks.SafeCall(MemoryManagement, func() error {
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
			return VulkanError("vkAllocateMemory", res)
		}
		outBuffer.Memory = memory
		return nil
	})
	if err != nil {
		outBuffer.Destroy(context)
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
		outBuffer.Destroy(context)
		return nil, VulkanError("vkBindBufferMemory", res)
	}
	return outBuffer, nil
}

// Map maps the whole buffer and keeps the pointer until Destroy.
func (vb *VulkanBuffer) Map(context *VulkanContext) (unsafe.Pointer, error) {
	if vb.mapped != nil {
		return vb.mapped, nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vb.Size, 0, &ptr); res != vk.Success {
		return nil, VulkanError("vkMapMemory", res)
	}
	vb.mapped = ptr
	return ptr, nil
}

// LoadData writes data at offset. The memory must be host visible and
// coherent.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset uint64, data []byte) error {
	if offset+uint64(len(data)) > uint64(vb.Size) {
		return fmt.Errorf("buffer write of %d bytes at offset %d exceeds size %d", len(data), offset, vb.Size)
	}
	ptr, err := vb.Map(context)
	if err != nil {
		return err
	}
	dst := unsafe.Slice((*byte)(unsafe.Add(ptr, offset)), len(data))
	copy(dst, data)
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
		vb.mapped = nil
	}
	if vb.Memory != vk.NullDeviceMemory {
		_ = context.locks.SafeCall(MemoryManagement, func() error {
			vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
			return nil
		})
		vb.Memory = vk.NullDeviceMemory
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	vb.Size = 0
}

// hostVisible is the memory used for vertex, uniform and staging buffers.
const hostVisible = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit

func stagingBuffer(context *VulkanContext, data []byte) (*VulkanBuffer, error) {
	buf, err := BufferCreate(context, uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(hostVisible))
	if err != nil {
		return nil, err
	}
	if err := buf.LoadData(context, 0, data); err != nil {
		buf.Destroy(context)
		return nil, err
	}
	return buf, nil
}
