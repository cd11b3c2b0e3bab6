package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// rgbaPixels returns img as tightly packed RGBA8. Three channel images get an
// opaque alpha.
func rgbaPixels(img *metadata.ImageData) ([]byte, error) {
	count := int(img.Width) * int(img.Height)
	switch img.Channels {
	case 4:
		if len(img.Pixels) < count*4 {
			return nil, fmt.Errorf("expected %d RGBA bytes, got %d", count*4, len(img.Pixels))
		}
		return img.Pixels[:count*4], nil
	case 3:
		if len(img.Pixels) < count*3 {
			return nil, fmt.Errorf("expected %d RGB bytes, got %d", count*3, len(img.Pixels))
		}
		out := make([]byte, count*4)
		for i := 0; i < count; i++ {
			out[i*4] = img.Pixels[i*3]
			out[i*4+1] = img.Pixels[i*3+1]
			out[i*4+2] = img.Pixels[i*3+2]
			out[i*4+3] = 0xff
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported channel count %d", img.Channels)
}

// uploadTexture creates a sampled image and fills it through a staging buffer
// on the graphics queue.
func uploadTexture(context *VulkanContext, width, height uint32, pixels []byte) (*VulkanImage, error) {
	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	staging, err := stagingBuffer(context, pixels)
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}
	defer staging.Destroy(context)

	pool := context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	if err := image.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		cb.Free(context, pool)
		image.ImageDestroy(context)
		return nil, err
	}
	image.CopyFromBuffer(staging.Handle, cb)
	if err := image.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		cb.Free(context, pool)
		image.ImageDestroy(context)
		return nil, err
	}

	if err := cb.EndSingleUse(context, pool, context.Device.GraphicsQueue, uint32(context.Device.GraphicsQueueIndex)); err != nil {
		image.ImageDestroy(context)
		return nil, err
	}
	return image, nil
}

func createSampler(context *VulkanContext) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	if context.Device.Features.SamplerAnisotropy == vk.True {
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = 16
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		return nil, VulkanError("vkCreateSampler", res)
	}
	return sampler, nil
}
