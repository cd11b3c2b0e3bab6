package platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/spaghettifunk/ember/engine/renderer/vulkan"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform is the GLFW window. With OpenGL it owns the GL context; with
// Vulkan it hands its surface to the Vulkan backend and drives its frames.
type Platform struct {
	Window *glfw.Window

	config     core.WindowConfig
	backend    metadata.BackendKind
	width      uint32
	height     uint32
	clearColor [4]float32

	vulkan   *vulkan.Backend
	onResize func(width, height uint32)
}

func New(cfg core.WindowConfig) (*Platform, error) {
	kind, err := metadata.ParseBackendKind(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownBackend, err)
	}
	return &Platform{
		config:     cfg,
		backend:    kind,
		width:      cfg.Width,
		height:     cfg.Height,
		clearColor: cfg.ClearColor,
	}, nil
}

// UseVulkan attaches the backend the window presents through. It must be
// called before Init when the platform runs Vulkan.
func (p *Platform) UseVulkan(b *vulkan.Backend) {
	p.vulkan = b
}

// OnResize registers fn to run after every framebuffer resize.
func (p *Platform) OnResize(fn func(width, height uint32)) {
	p.onResize = fn
}

func (p *Platform) Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: glfw: %s", core.ErrWindowInit, err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	switch p.backend {
	case metadata.BackendVulkan:
		if p.vulkan == nil {
			return fmt.Errorf("%w: no vulkan backend attached", core.ErrWindowInit)
		}
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	default:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}

	window, err := glfw.CreateWindow(int(p.config.Width), int(p.config.Height), p.config.Name, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrWindowInit, err)
	}
	p.Window = window

	fbWidth, fbHeight := window.GetFramebufferSize()
	p.width, p.height = uint32(fbWidth), uint32(fbHeight)

	switch p.backend {
	case metadata.BackendVulkan:
		p.vulkan.SetClearColor(p.clearColor[0], p.clearColor[1], p.clearColor[2], p.clearColor[3])
		if err := p.vulkan.Initialize(window, p.width, p.height); err != nil {
			return fmt.Errorf("%w: %s", core.ErrWindowInit, err)
		}
	default:
		window.MakeContextCurrent()
		if err := gl.Init(); err != nil {
			return fmt.Errorf("%w: gl: %s", core.ErrWindowInit, err)
		}
		glfw.SwapInterval(1)
		core.LogInfo("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))
		gl.Enable(gl.DEPTH_TEST)
		gl.Viewport(0, 0, int32(p.width), int32(p.height))
	}

	window.SetKeyCallback(p.keyCallback)
	window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	window.SetPos(int(p.config.PosX), int(p.config.PosY))
	window.Show()

	core.LogInfo("%s window created (%dx%d)", p.backend, p.width, p.height)
	return nil
}

func (p *Platform) Backend() metadata.BackendKind {
	return p.backend
}

func (p *Platform) Width() uint32 {
	return p.width
}

func (p *Platform) Height() uint32 {
	return p.height
}

func (p *Platform) SetClearColor(r, g, b, a float32) {
	p.clearColor = [4]float32{r, g, b, a}
	if p.backend == metadata.BackendVulkan && p.vulkan != nil {
		p.vulkan.SetClearColor(r, g, b, a)
	}
}

// Clear starts a frame. On Vulkan a frame that cannot start is skipped and
// every draw recorded until Present is dropped.
func (p *Platform) Clear() {
	if p.backend == metadata.BackendVulkan {
		if err := p.vulkan.BeginFrame(); err != nil && !errors.Is(err, core.ErrSwapchainBooting) {
			core.LogError("begin frame failed: %s", err)
		}
		return
	}
	gl.ClearColor(p.clearColor[0], p.clearColor[1], p.clearColor[2], p.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (p *Platform) Present() {
	if p.backend == metadata.BackendVulkan {
		if err := p.vulkan.EndFrame(); err != nil {
			core.LogError("end frame failed: %s", err)
		}
		return
	}
	p.Window.SwapBuffers()
}

// PumpMessages processes pending window events and reports whether the
// application should keep running.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// Close asks the window to close at the next PumpMessages.
func (p *Platform) Close() {
	if p.Window != nil {
		p.Window.SetShouldClose(true)
	}
}

func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func (p *Platform) Shutdown() {
	if p.vulkan != nil {
		p.vulkan.Shutdown()
	}
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		core.LogInfo("escape pressed, closing window")
		w.SetShouldClose(true)
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.width, p.height = uint32(width), uint32(height)
	core.LogDebug("Window resize: %d, %d", width, height)

	if p.backend == metadata.BackendVulkan {
		p.vulkan.Resized(p.width, p.height)
	} else {
		gl.Viewport(0, 0, int32(width), int32(height))
	}
	if p.onResize != nil && width > 0 && height > 0 {
		p.onResize(p.width, p.height)
	}
}
