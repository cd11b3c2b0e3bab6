package assets

import (
	"path/filepath"
	"strings"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeImage
	AssetTypeMesh
	AssetTypeShaderSource
	AssetTypeShaderBinary
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeImage:
		return "image"
	case AssetTypeMesh:
		return "mesh"
	case AssetTypeShaderSource:
		return "shader"
	case AssetTypeShaderBinary:
		return "spirv"
	}
	return "none"
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeImage
	case ".obj":
		return AssetTypeMesh
	case ".vert", ".frag", ".glsl":
		return AssetTypeShaderSource
	case ".spv":
		return AssetTypeShaderBinary
	default:
		return AssetTypeNone
	}
}
