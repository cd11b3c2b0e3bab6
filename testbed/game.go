package testbed

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width   uint32
	height  uint32
	objects []*metadata.WorldObject

	sinceReport float64
}

// NewTestGame builds a game that spawns every object of the config file and
// spins them at their configured rates.
func NewTestGame(configPath string, debug bool) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				ConfigPath: configPath,
				AssetRoot:  "assets",
				Debug:      debug,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Renderer == nil {
		return fmt.Errorf("the engine has not attached a renderer to the game")
	}
	state := g.State.(*gameState)

	objects, err := g.Renderer.LoadScene(g.ApplicationConfig.Config.Objects)
	if err != nil {
		return err
	}
	for _, o := range objects {
		core.LogInfo("spawned %s (%s) with %d vertices", o.Name, o.ID, o.Mesh.VertexCount)
	}
	state.objects = objects
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	for _, o := range state.objects {
		o.Advance(deltaTime)
	}

	state.sinceReport += deltaTime
	if state.sinceReport >= 5 {
		state.sinceReport = 0
		stats := g.Renderer.Uploader().Stats()
		core.LogDebug("%d objects in scene, %d meshes, %d textures (%d failed), window %dx%d",
			len(g.Renderer.Pipeline().WorldObjects), stats.Meshes, stats.TexturesCreated, stats.TexturesFailed, state.width, state.height)
		if g.Metrics != nil {
			fps, frameTime := g.Metrics.Frame()
			core.LogDebug("%.1f fps, %.2fms per frame", fps, frameTime)
		}
	}
	return nil
}

// Render has nothing to add: the pipeline draws every spawned object.
func (g *TestGame) Render(deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	state.objects = nil
	return nil
}
