package core

import (
	"errors"
)

var (
	ErrSwapchainBooting       = errors.New("swapchain resized or recreated, booting")
	ErrWindowInit             = errors.New("window or graphics context failed to initialize")
	ErrBackendMismatch        = errors.New("window and renderer use different graphics backends")
	ErrUnknownBackend         = errors.New("unknown graphics backend")
	ErrPipelineNotInitialized = errors.New("render pipeline not initialized")
	ErrInvalidShaderStage     = errors.New("invalid shader stage")
	ErrShaderIncomplete       = errors.New("shader program needs both a vertex and a fragment stage")
	ErrNoVertices             = errors.New("mesh has no vertices")
	ErrMalformedVertex        = errors.New("malformed vertex record")
	ErrMalformedFace          = errors.New("malformed face record")
	ErrFaceIndexOutOfRange    = errors.New("face index out of range")
	ErrUnsupportedImage       = errors.New("unsupported image format")
	ErrInvalidConfig          = errors.New("invalid configuration")
)
