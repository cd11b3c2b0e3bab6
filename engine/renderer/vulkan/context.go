package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/core"
)

// SurfaceProvider is the window side of surface creation. *glfw.Window
// satisfies it.
type SurfaceProvider interface {
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetRequiredInstanceExtensions() []string
}

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Bumped on every resize. When it differs from FramebufferSizeLastGeneration
	// the swapchain is rebuilt at the start of the next frame.
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debug          bool
	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// One per swapchain image.
	GraphicsCommandBuffers []*VulkanCommandBuffer

	// One per frame in flight.
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*VulkanFence

	// Borrowed from InFlightFences, one slot per swapchain image.
	ImagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32

	RecreatingSwapchain bool

	locks *VulkanLockPool
}

func NewContext(debug bool) *VulkanContext {
	return &VulkanContext{
		Allocator: nil,
		debug:     debug,
		Device:    &VulkanDevice{},
		locks:     NewVulkanLockPool(),
	}
}

// Create brings up the instance, surface, device, swapchain, main renderpass,
// framebuffers, command buffers and frame sync objects in that order.
func (vc *VulkanContext) Create(window SurfaceProvider, appName string, width, height uint32, clearColor [4]float32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	vc.FramebufferWidth = width
	vc.FramebufferHeight = height

	if err := vc.createInstance(window, appName); err != nil {
		return err
	}

	if vc.debug {
		if err := vc.createDebugger(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := window.CreateWindowSurface(vc.Instance, nil)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vc.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vc); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vc, vc.FramebufferWidth, vc.FramebufferHeight)
	if err != nil {
		return err
	}
	vc.Swapchain = sc

	rp, err := RenderpassCreate(
		vc,
		0, 0, float32(vc.FramebufferWidth), float32(vc.FramebufferHeight),
		clearColor[0], clearColor[1], clearColor[2], clearColor[3],
		1.0,
		0)
	if err != nil {
		return err
	}
	vc.MainRenderpass = rp

	if err := vc.regenerateFramebuffers(); err != nil {
		return err
	}

	if err := vc.createCommandBuffers(); err != nil {
		return err
	}

	if err := vc.createSyncObjects(); err != nil {
		return err
	}

	core.LogInfo("Vulkan context initialized successfully.")
	return nil
}

func (vc *VulkanContext) createInstance(window SurfaceProvider, appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Ember"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	for _, name := range window.GetRequiredInstanceExtensions() {
		if name != "VK_KHR_surface" {
			requiredExtensions = append(requiredExtensions, name)
		}
	}

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	if vc.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogDebug("Required extensions: %v", requiredExtensions)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var requiredLayers []string
	if vc.debug {
		requiredLayers = []string{"VK_LAYER_KHRONOS_validation"}
		if err := checkValidationLayers(requiredLayers); err != nil {
			return err
		}
	}
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if res := vk.CreateInstance(&createInfo, vc.Allocator, &vc.Instance); res != vk.Success {
		return VulkanError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(vc.Instance); err != nil {
		return err
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

func checkValidationLayers(required []string) error {
	core.LogInfo("Validation layers enabled. Enumerating...")

	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return VulkanError("vkEnumerateInstanceLayerProperties", res)
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return VulkanError("vkEnumerateInstanceLayerProperties", res)
	}

	for _, name := range required {
		found := false
		for i := range available {
			available[i].Deref()
			if fixedString(available[i].LayerName[:]) == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("required validation layer is missing: %s", name)
		}
	}
	core.LogInfo("All required validation layers are present.")
	return nil
}

func (vc *VulkanContext) createDebugger() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vc.Instance, &debugCreateInfo, vc.Allocator, &dbg); res != vk.Success {
		return VulkanError("vkCreateDebugReportCallback", res)
	}
	vc.debugMessenger = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vc *VulkanContext) createSyncObjects() error {
	frames := int(vc.Swapchain.MaxFramesInFlight)
	vc.ImageAvailableSemaphores = make([]vk.Semaphore, frames)
	vc.QueueCompleteSemaphores = make([]vk.Semaphore, frames)
	vc.InFlightFences = make([]*VulkanFence, frames)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < frames; i++ {
		if res := vk.CreateSemaphore(vc.Device.LogicalDevice, &semaphoreCreateInfo, vc.Allocator, &vc.ImageAvailableSemaphores[i]); res != vk.Success {
			return VulkanError("vkCreateSemaphore", res)
		}
		if res := vk.CreateSemaphore(vc.Device.LogicalDevice, &semaphoreCreateInfo, vc.Allocator, &vc.QueueCompleteSemaphores[i]); res != vk.Success {
			return VulkanError("vkCreateSemaphore", res)
		}

		// Signaled so the very first frame does not wait forever.
		f, err := NewFence(vc, true)
		if err != nil {
			return err
		}
		vc.InFlightFences[i] = f
	}

	vc.ImagesInFlight = make([]*VulkanFence, vc.Swapchain.ImageCount)
	return nil
}

func (vc *VulkanContext) createCommandBuffers() error {
	if len(vc.GraphicsCommandBuffers) != int(vc.Swapchain.ImageCount) {
		vc.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vc.Swapchain.ImageCount)
	}
	for i := range vc.GraphicsCommandBuffers {
		if cb := vc.GraphicsCommandBuffers[i]; cb != nil && cb.Handle != nil {
			cb.Free(vc, vc.Device.GraphicsCommandPool)
		}
		cb, err := NewVulkanCommandBuffer(vc, vc.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vc.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vc *VulkanContext) regenerateFramebuffers() error {
	swapchain := vc.Swapchain
	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vc, vc.MainRenderpass, vc.FramebufferWidth, vc.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has every bit of propertyFlags, or -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

// Destroy tears everything down in reverse creation order.
func (vc *VulkanContext) Destroy() {
	if vc.Device == nil || vc.Device.LogicalDevice == nil {
		vc.destroyInstance()
		return
	}
	vk.DeviceWaitIdle(vc.Device.LogicalDevice)

	for i := range vc.InFlightFences {
		if vc.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vc.Device.LogicalDevice, vc.ImageAvailableSemaphores[i], vc.Allocator)
		}
		if vc.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vc.Device.LogicalDevice, vc.QueueCompleteSemaphores[i], vc.Allocator)
		}
		vc.InFlightFences[i].Destroy(vc)
	}
	vc.ImageAvailableSemaphores = nil
	vc.QueueCompleteSemaphores = nil
	vc.InFlightFences = nil
	vc.ImagesInFlight = nil

	for _, cb := range vc.GraphicsCommandBuffers {
		if cb != nil && cb.Handle != nil {
			cb.Free(vc, vc.Device.GraphicsCommandPool)
		}
	}
	vc.GraphicsCommandBuffers = nil

	if vc.Swapchain != nil {
		for _, fb := range vc.Swapchain.Framebuffers {
			fb.Destroy(vc)
		}
	}
	if vc.MainRenderpass != nil {
		vc.MainRenderpass.RenderpassDestroy(vc)
	}
	if vc.Swapchain != nil {
		vc.Swapchain.SwapchainDestroy(vc)
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vc)

	vc.destroyInstance()
}

func (vc *VulkanContext) destroyInstance() {
	if vc.Instance == nil {
		return
	}
	if vc.Surface != vk.NullSurface {
		vk.DestroySurface(vc.Instance, vc.Surface, vc.Allocator)
		vc.Surface = vk.NullSurface
	}
	if vc.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vc.Instance, vc.debugMessenger, vc.Allocator)
		vc.debugMessenger = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vc.Instance, vc.Allocator)
	vc.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
