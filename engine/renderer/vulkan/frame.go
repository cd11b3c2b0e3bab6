package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/core"
)

// Resized records the new framebuffer size. The swapchain is rebuilt by the
// next BeginFrame.
func (vc *VulkanContext) Resized(width, height uint32) {
	vc.cachedFramebufferWidth = width
	vc.cachedFramebufferHeight = height
	vc.FramebufferSizeGeneration++

	core.LogDebug("Vulkan resized: w/h/gen: %d/%d/%d", width, height, vc.FramebufferSizeGeneration)
}

// scheduleRecreate flags the swapchain as stale without losing a pending resize.
func (vc *VulkanContext) scheduleRecreate() {
	if vc.cachedFramebufferWidth == 0 || vc.cachedFramebufferHeight == 0 {
		vc.cachedFramebufferWidth = vc.FramebufferWidth
		vc.cachedFramebufferHeight = vc.FramebufferHeight
	}
	vc.FramebufferSizeGeneration++
}

// CurrentCommandBuffer is the buffer recording the frame in progress.
func (vc *VulkanContext) CurrentCommandBuffer() *VulkanCommandBuffer {
	return vc.GraphicsCommandBuffers[vc.ImageIndex]
}

// BeginFrame waits for the frame slot, acquires an image and opens the main
// renderpass. It returns core.ErrSwapchainBooting when the frame has to be
// skipped.
func (vc *VulkanContext) BeginFrame() error {
	device := vc.Device
	if vc.RecreatingSwapchain {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(res) {
			return VulkanError("vkDeviceWaitIdle", res)
		}
		core.LogDebug("Recreating swapchain, booting.")
		return core.ErrSwapchainBooting
	}

	if vc.FramebufferSizeGeneration != vc.FramebufferSizeLastGeneration {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(res) {
			return VulkanError("vkDeviceWaitIdle", res)
		}
		// A minimised window cannot hold a swapchain; keep the flag set and retry.
		if err := vc.recreateSwapchain(); err != nil {
			return err
		}
		core.LogDebug("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	if !vc.InFlightFences[vc.CurrentFrame].Wait(vc, math.MaxUint64) {
		return fmt.Errorf("in-flight fence wait failure")
	}

	imageIndex, err := vc.Swapchain.SwapchainAcquireNextImageIndex(vc, math.MaxUint64, vc.ImageAvailableSemaphores[vc.CurrentFrame], vk.NullFence)
	if err != nil {
		return err
	}
	vc.ImageIndex = imageIndex

	// The command buffer belongs to the image, so a previous frame still
	// rendering to it must finish before the buffer is reset.
	if fence := vc.ImagesInFlight[vc.ImageIndex]; fence != nil {
		if !fence.Wait(vc, math.MaxUint64) {
			return fmt.Errorf("image in-flight fence wait failure")
		}
	}

	commandBuffer := vc.CurrentCommandBuffer()
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vc.FramebufferWidth),
		Height:   float32(vc.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vc.FramebufferWidth,
			Height: vc.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vc.MainRenderpass.W = float32(vc.FramebufferWidth)
	vc.MainRenderpass.H = float32(vc.FramebufferHeight)
	vc.MainRenderpass.RenderpassBegin(commandBuffer, vc.Swapchain.Framebuffers[vc.ImageIndex].Handle)

	return nil
}

// EndFrame closes the renderpass, submits the command buffer and presents.
func (vc *VulkanContext) EndFrame() error {
	commandBuffer := vc.CurrentCommandBuffer()

	vc.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	vc.ImagesInFlight[vc.ImageIndex] = vc.InFlightFences[vc.CurrentFrame]

	if err := vc.InFlightFences[vc.CurrentFrame].Reset(vc); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vc.QueueCompleteSemaphores[vc.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vc.ImageAvailableSemaphores[vc.CurrentFrame]},
		// One frame presented at a time.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if err := vc.locks.SafeQueueCall(uint32(vc.Device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vc.InFlightFences[vc.CurrentFrame].Handle); res != vk.Success {
			return VulkanError("vkQueueSubmit", res)
		}
		return nil
	}); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()

	return vc.Swapchain.SwapchainPresent(
		vc,
		vc.Device.PresentQueue,
		vc.QueueCompleteSemaphores[vc.CurrentFrame],
		vc.ImageIndex)
}

func (vc *VulkanContext) recreateSwapchain() error {
	if vc.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating. Booting.")
		return core.ErrSwapchainBooting
	}

	width, height := vc.cachedFramebufferWidth, vc.cachedFramebufferHeight
	if width == 0 || height == 0 {
		core.LogDebug("recreateSwapchain called when window is < 1 in a dimension. Booting.")
		return core.ErrSwapchainBooting
	}

	vc.RecreatingSwapchain = true
	defer func() { vc.RecreatingSwapchain = false }()

	vk.DeviceWaitIdle(vc.Device.LogicalDevice)

	for i := range vc.ImagesInFlight {
		vc.ImagesInFlight[i] = nil
	}

	if err := DeviceQuerySwapchainSupport(vc.Device.PhysicalDevice, vc.Surface, &vc.Device.SwapchainSupport); err != nil {
		return err
	}
	if !DeviceDetectDepthFormat(vc.Device) {
		return fmt.Errorf("failed to find a supported depth format")
	}

	for _, fb := range vc.Swapchain.Framebuffers {
		fb.Destroy(vc)
	}

	sc, err := vc.Swapchain.SwapchainRecreate(vc, width, height)
	if err != nil {
		return err
	}
	vc.Swapchain = sc

	vc.FramebufferWidth = width
	vc.FramebufferHeight = height
	vc.MainRenderpass.X = 0
	vc.MainRenderpass.Y = 0
	vc.MainRenderpass.W = float32(width)
	vc.MainRenderpass.H = float32(height)
	vc.cachedFramebufferWidth = 0
	vc.cachedFramebufferHeight = 0
	vc.FramebufferSizeLastGeneration = vc.FramebufferSizeGeneration

	if err := vc.regenerateFramebuffers(); err != nil {
		return err
	}
	if len(vc.ImagesInFlight) != int(sc.ImageCount) {
		vc.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)
	}
	return vc.createCommandBuffers()
}
