package vulkan

import "github.com/spaghettifunk/ember/engine/renderer/metadata"

// Resource holds the Vulkan objects behind a handle. Only the fields that
// apply to the handle's kind are set.
type Resource struct {
	Buffer   *VulkanBuffer
	Image    *VulkanImage
	Program  *VulkanPipeline
	Vertex   *VulkanShaderStage
	Fragment *VulkanShaderStage
}

func (Resource) Backend() metadata.BackendKind {
	return metadata.BackendVulkan
}

func payload(h metadata.ResourceHandle) (Resource, bool) {
	r, ok := h.Resource.(Resource)
	return r, ok
}
