package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/core"
)

// VulkanFence tracks its signaled state so waits on a known-signaled fence
// never reach the driver.
type VulkanFence struct {
	Handle   vk.Fence
	Signaled bool
}

func NewFence(vc *VulkanContext, signaled bool) (*VulkanFence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(vc.Device.LogicalDevice, &info, vc.Allocator, &handle); res != vk.Success {
		return nil, VulkanError("vkCreateFence", res)
	}
	return &VulkanFence{Handle: handle, Signaled: signaled}, nil
}

func (f *VulkanFence) Destroy(vc *VulkanContext) {
	if f == nil || f.Handle == nil {
		return
	}
	vk.DestroyFence(vc.Device.LogicalDevice, f.Handle, vc.Allocator)
	*f = VulkanFence{}
}

// Wait blocks up to timeoutNs and reports whether the fence is signaled.
func (f *VulkanFence) Wait(vc *VulkanContext, timeoutNs uint64) bool {
	if f.Signaled {
		return true
	}
	switch res := vk.WaitForFences(vc.Device.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, timeoutNs); res {
	case vk.Success:
		f.Signaled = true
	case vk.Timeout:
		core.LogWarn("fence wait timed out after %dns", timeoutNs)
	default:
		core.LogError("fence wait failed: %s", VulkanResultString(res, true))
	}
	return f.Signaled
}

func (f *VulkanFence) Reset(vc *VulkanContext) error {
	if !f.Signaled {
		return nil
	}
	if res := vk.ResetFences(vc.Device.LogicalDevice, 1, []vk.Fence{f.Handle}); res != vk.Success {
		return VulkanError("vkResetFences", res)
	}
	f.Signaled = false
	return nil
}
