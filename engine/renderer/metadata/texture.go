package metadata

/** @brief The fixed texture slots of a material, in texture unit order. */
type TextureSlot int

const (
	TextureSlotAlbedo TextureSlot = iota
	TextureSlotNormal
	TextureSlotSpecular
	TextureSlotMetallic
	TextureSlotEmission
	TextureSlotCount
)

/** @brief Sampler uniform names, indexed by TextureSlot. */
var TextureSlotSamplers = [TextureSlotCount]string{
	"uAlbedo",
	"uNormal",
	"uSpecular",
	"uMetallic",
	"uEmission",
}

func (s TextureSlot) String() string {
	switch s {
	case TextureSlotAlbedo:
		return "albedo"
	case TextureSlotNormal:
		return "normal"
	case TextureSlotSpecular:
		return "specular"
	case TextureSlotMetallic:
		return "metallic"
	case TextureSlotEmission:
		return "emission"
	}
	return "unknown"
}

// Unit is the texture unit the slot is bound to while drawing.
func (s TextureSlot) Unit() uint32 {
	return uint32(s)
}

/** @brief CPU side paths of the five material textures. */
type MaterialTexturePaths struct {
	Albedo   string
	Normal   string
	Specular string
	Metallic string
	Emission string
}

func (p MaterialTexturePaths) Slots() [TextureSlotCount]string {
	return [TextureSlotCount]string{p.Albedo, p.Normal, p.Specular, p.Metallic, p.Emission}
}

/** @brief GPU side handles of the five material textures. */
type MaterialTextureSet struct {
	Albedo   ResourceHandle
	Normal   ResourceHandle
	Specular ResourceHandle
	Metallic ResourceHandle
	Emission ResourceHandle
}

// Slots returns the handles in texture unit order 0..4.
func (m *MaterialTextureSet) Slots() [TextureSlotCount]ResourceHandle {
	return [TextureSlotCount]ResourceHandle{m.Albedo, m.Normal, m.Specular, m.Metallic, m.Emission}
}

func (m *MaterialTextureSet) Set(slot TextureSlot, h ResourceHandle) {
	switch slot {
	case TextureSlotAlbedo:
		m.Albedo = h
	case TextureSlotNormal:
		m.Normal = h
	case TextureSlotSpecular:
		m.Specular = h
	case TextureSlotMetallic:
		m.Metallic = h
	case TextureSlotEmission:
		m.Emission = h
	}
}

// Complete is true once every slot holds a handle, error-marked ones included.
func (m *MaterialTextureSet) Complete() bool {
	for _, h := range m.Slots() {
		if !h.Populated() {
			return false
		}
	}
	return true
}

/**
 * @brief Decoded image pixels, tightly packed rows, top row first.
 */
type ImageData struct {
	Width    uint32
	Height   uint32
	/** @brief 3 (RGB) or 4 (RGBA). */
	Channels uint8
	Pixels   []uint8
}
