package metadata

import (
	"fmt"
	"strings"
)

/** @brief The graphics API family a resource was created by. */
type BackendKind int

const (
	/** @brief State-machine style API: objects are named by integer ids. */
	BackendOpenGL BackendKind = iota
	/** @brief Explicit-object style API: buffers, images, modules and pipelines. */
	BackendVulkan
)

func (b BackendKind) String() string {
	switch b {
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// ParseBackendKind maps a configuration string onto a BackendKind.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(s) {
	case "opengl", "gl":
		return BackendOpenGL, nil
	case "vulkan", "vk":
		return BackendVulkan, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

/** @brief Non-zero values mark a handle whose creation failed. */
type ErrorCode int32

const (
	ErrorCodeNone ErrorCode = iota
	/** @brief A file could not be read or decoded. */
	ErrorCodeLoadFailed
	/** @brief A shader source was submitted for an unknown stage. */
	ErrorCodeInvalidStage
	/** @brief A program was finalized without both stages. */
	ErrorCodeIncomplete
	ErrorCodeCompileFailed
	ErrorCodeLinkFailed
	/** @brief The GPU rejected a buffer or image upload. */
	ErrorCodeUploadFailed
	ErrorCodeUnsupported
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeNone:
		return "none"
	case ErrorCodeLoadFailed:
		return "load failed"
	case ErrorCodeInvalidStage:
		return "invalid stage"
	case ErrorCodeIncomplete:
		return "incomplete"
	case ErrorCodeCompileFailed:
		return "compile failed"
	case ErrorCodeLinkFailed:
		return "link failed"
	case ErrorCodeUploadFailed:
		return "upload failed"
	case ErrorCodeUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("error(%d)", int32(c))
}

/**
 * @brief Backend specific payload of a ResourceHandle. Each backend package
 * provides exactly one implementation.
 */
type Resource interface {
	Backend() BackendKind
}

/**
 * @brief A reference to one GPU-side object (buffer, texture, program...).
 * The zero value is an empty handle. A handle is owned by the record holding
 * it and is freed explicitly through the backend that created it.
 */
type ResourceHandle struct {
	/** @brief 0 on success. */
	ErrorCode ErrorCode
	/** @brief The backend payload, nil when empty or failed. */
	Resource Resource
}

func NewHandle(r Resource) ResourceHandle {
	return ResourceHandle{Resource: r}
}

func ErrorHandle(code ErrorCode) ResourceHandle {
	return ResourceHandle{ErrorCode: code}
}

// Ok reports a successfully created handle.
func (h ResourceHandle) Ok() bool {
	return h.ErrorCode == ErrorCodeNone && h.Resource != nil
}

// Populated reports whether any creation attempt has been recorded, failed or not.
func (h ResourceHandle) Populated() bool {
	return h.ErrorCode != ErrorCodeNone || h.Resource != nil
}

// Empty reports the zero value.
func (h ResourceHandle) Empty() bool {
	return !h.Populated()
}

func (h ResourceHandle) String() string {
	if h.Resource == nil {
		return fmt.Sprintf("handle{empty, code=%s}", h.ErrorCode)
	}
	return fmt.Sprintf("handle{%s, code=%s}", h.Resource.Backend(), h.ErrorCode)
}
