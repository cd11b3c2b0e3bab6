package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/core"
)

type materialKey [VULKAN_MATERIAL_SAMPLER_COUNT]vk.ImageView

// VulkanDescriptors owns both set layouts, the pool they are allocated from,
// the per-frame camera uniform buffers and the cache of material sets.
type VulkanDescriptors struct {
	GlobalLayout   vk.DescriptorSetLayout
	MaterialLayout vk.DescriptorSetLayout
	Pool           vk.DescriptorPool

	// One per frame in flight.
	GlobalSets    []vk.DescriptorSet
	GlobalBuffers []*VulkanBuffer

	materialSets map[materialKey]vk.DescriptorSet
}

func DescriptorsCreate(context *VulkanContext) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{
		materialSets: make(map[materialKey]vk.DescriptorSet),
	}

	globalBinding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
	layout, err := createSetLayout(context, []vk.DescriptorSetLayoutBinding{globalBinding})
	if err != nil {
		return nil, err
	}
	d.GlobalLayout = layout

	samplerBindings := make([]vk.DescriptorSetLayoutBinding, VULKAN_MATERIAL_SAMPLER_COUNT)
	for i := range samplerBindings {
		samplerBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}
	}
	if d.MaterialLayout, err = createSetLayout(context, samplerBindings); err != nil {
		d.Destroy(context)
		return nil, err
	}

	frames := VULKAN_MAX_FRAMES_IN_FLIGHT
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: frames,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: VULKAN_MAX_MATERIAL_COUNT * VULKAN_MATERIAL_SAMPLER_COUNT,
		},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       frames + VULKAN_MAX_MATERIAL_COUNT,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		d.Destroy(context)
		return nil, VulkanError("vkCreateDescriptorPool", res)
	}
	d.Pool = pool

	d.GlobalSets = make([]vk.DescriptorSet, frames)
	d.GlobalBuffers = make([]*VulkanBuffer, frames)
	for i := range d.GlobalSets {
		buf, err := BufferCreate(context, VULKAN_GLOBAL_UBO_SIZE,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(hostVisible))
		if err != nil {
			d.Destroy(context)
			return nil, err
		}
		d.GlobalBuffers[i] = buf

		set, err := d.allocate(context, d.GlobalLayout)
		if err != nil {
			d.Destroy(context)
			return nil, err
		}
		d.GlobalSets[i] = set

		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: buf.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(VULKAN_GLOBAL_UBO_SIZE),
			}},
		}
		vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	}

	core.LogDebug("Vulkan descriptor layouts and pool created.")
	return d, nil
}

func createSetLayout(context *VulkanContext, bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &info, context.Allocator, &layout); res != vk.Success {
		return nil, VulkanError("vkCreateDescriptorSetLayout", res)
	}
	return layout, nil
}

func (d *VulkanDescriptors) allocate(context *VulkanContext, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	err := context.locks.SafeCall(DescriptorManagement, func() error {
		info := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     d.Pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout},
		}
		if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &info, &set); res != vk.Success {
			return VulkanError("vkAllocateDescriptorSets", res)
		}
		return nil
	})
	return set, err
}

// WriteGlobal copies data into the camera buffer of the given frame.
func (d *VulkanDescriptors) WriteGlobal(context *VulkanContext, frame uint32, offset uint64, data []byte) error {
	return d.GlobalBuffers[frame].LoadData(context, offset, data)
}

// MaterialSet returns the set sampling views, allocating it on first use.
func (d *VulkanDescriptors) MaterialSet(context *VulkanContext, views materialKey, sampler vk.Sampler) (vk.DescriptorSet, error) {
	if set, ok := d.materialSets[views]; ok {
		return set, nil
	}
	if uint32(len(d.materialSets)) >= VULKAN_MAX_MATERIAL_COUNT {
		return nil, fmt.Errorf("material descriptor limit of %d reached", VULKAN_MAX_MATERIAL_COUNT)
	}

	set, err := d.allocate(context, d.MaterialLayout)
	if err != nil {
		return nil, err
	}

	writes := make([]vk.WriteDescriptorSet, len(views))
	for i, view := range views {
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				ImageView:   view,
				Sampler:     sampler,
			}},
		}
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)

	d.materialSets[views] = set
	return set, nil
}

// Forget frees every cached material set that samples view. The device must
// be idle.
func (d *VulkanDescriptors) Forget(context *VulkanContext, view vk.ImageView) {
	for key, set := range d.materialSets {
		for _, v := range key {
			if v == view {
				err := context.locks.SafeCall(DescriptorManagement, func() error {
					if res := vk.FreeDescriptorSets(context.Device.LogicalDevice, d.Pool, 1, &set); res != vk.Success {
						return VulkanError("vkFreeDescriptorSets", res)
					}
					return nil
				})
				if err != nil {
					core.LogWarn("%s", err)
				}
				delete(d.materialSets, key)
				break
			}
		}
	}
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	for _, buf := range d.GlobalBuffers {
		if buf != nil {
			buf.Destroy(context)
		}
	}
	d.GlobalBuffers = nil
	d.GlobalSets = nil
	d.materialSets = make(map[materialKey]vk.DescriptorSet)

	if d.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = nil
	}
	if d.MaterialLayout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.MaterialLayout, context.Allocator)
		d.MaterialLayout = nil
	}
	if d.GlobalLayout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.GlobalLayout, context.Allocator)
		d.GlobalLayout = nil
	}
}
