package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/ember/engine/assets"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/platform"
	"github.com/spaghettifunk/ember/engine/renderer"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
	"github.com/spaghettifunk/ember/engine/renderer/opengl"
	"github.com/spaghettifunk/ember/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *core.Config
	running      atomic.Bool
	isSuspended  bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	clock        *core.Clock
	metrics      *core.FrameMetrics
	lastTime     float64
	shutdownOnce sync.Once
}

// New loads the application config and builds the window, the backend it
// names and the renderer on top of them. Nothing touches the GPU yet.
func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = &ApplicationConfig{}
	}
	if err := g.ApplicationConfig.Load(); err != nil {
		return nil, err
	}
	cfg := g.ApplicationConfig.Config

	p, err := platform.New(cfg.Window)
	if err != nil {
		return nil, err
	}

	var backend renderer.Backend
	switch p.Backend() {
	case metadata.BackendVulkan:
		vb := vulkan.New(cfg.Window.Name, g.ApplicationConfig.Debug)
		p.UseVulkan(vb)
		backend = vb
	default:
		backend = opengl.New()
	}

	am := assets.NewAssetManager()
	r := renderer.New(p, backend, am, cfg.Camera)
	g.Renderer = r
	g.Metrics = core.NewFrameMetrics()

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		platform:     p,
		assetManager: am,
		renderer:     r,
		clock:        core.NewClock(),
		metrics:      g.Metrics,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := e.assetManager.Initialize(e.gameInstance.ApplicationConfig.AssetRoot); err != nil {
		return err
	}

	vertexPath, fragmentPath := e.config.Shaders.For(e.config.Window.Backend)
	if err := e.renderer.Initialize(vertexPath, fragmentPath); err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	e.renderer.SetClearColor(e.config.Window.ClearColor)
	e.platform.OnResize(e.onResized)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.platform.Width(), e.platform.Height()); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run before initialization (stage %d)", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.running.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.running.Load() {
		if !e.platform.PumpMessages() {
			break
		}

		minimized := e.platform.Width() == 0 || e.platform.Height() == 0
		if minimized != e.isSuspended {
			e.isSuspended = minimized
			if minimized {
				core.LogInfo("Window minimized, suspending application.")
			} else {
				core.LogInfo("Window restored, resuming application.")
			}
		}
		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				return err
			}
		}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				return err
			}
		}
		if err := e.renderer.DrawFrame(); err != nil {
			core.LogError("draw frame failed: %s", err)
			return err
		}

		e.metrics.Update(platform.GetAbsoluteTime() - frameStartTime)
		e.lastTime = currentTime
	}
	e.running.Store(false)
	return nil
}

// Stop ends Run after the current frame. It is safe to call from any goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Shutdown releases the game, the renderer and the window in that order.
// Only the first call has an effect.
func (e *Engine) Shutdown() error {
	var err error
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		if e.gameInstance.FnShutdown != nil {
			err = e.gameInstance.FnShutdown()
		}
		e.renderer.Shutdown()
		e.platform.Shutdown()
		fps, frameTime := e.metrics.Frame()
		core.LogInfo("engine shut down (last %.1f fps, %.2fms per frame)", fps, frameTime)
		e.currentStage = EngineStageUninitialized
	})
	return err
}

func (e *Engine) onResized(width, height uint32) {
	e.renderer.OnResize(width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}
