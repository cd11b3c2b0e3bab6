package vulkan

/**
 * @brief Frames recorded ahead of the presentation engine.
 */
const VULKAN_MAX_FRAMES_IN_FLIGHT uint32 = 2

/**
 * @brief Max number of distinct texture combinations bound as materials.
 * @todo TODO: make configurable
 */
const VULKAN_MAX_MATERIAL_COUNT uint32 = 1024

/**
 * @brief Samplers per material, one per texture slot.
 */
const VULKAN_MATERIAL_SAMPLER_COUNT uint32 = 5

/**
 * @brief Size of the per frame uniform block: view then projection.
 */
const VULKAN_GLOBAL_UBO_SIZE uint64 = 2 * 64

/**
 * @brief Size of the model matrix push constant.
 */
const VULKAN_PUSH_CONSTANT_SIZE uint32 = 64

const (
	globalDescriptorSet   uint32 = 0
	materialDescriptorSet uint32 = 1
)
