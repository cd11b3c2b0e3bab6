package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
log_level = "debug"

[window]
name = "Test"
width = 800
height = 600
backend = "opengl"

[camera]
fov = 60.0
near = 0.5
far = 50.0

[[objects]]
name = "cube"
mesh = "models/cube.obj"
position = [1.0, 2.0, 3.0]
spin = [0.0, 90.0, 0.0]

[objects.textures]
albedo = "textures/cube.png"
`

const sampleYAML = `
window:
  width: 640
  height: 480
  backend: vulkan
objects:
  - name: pyramid
    mesh: models/pyramid.obj
    scale: [2, 2, 2]
`

func TestDecodeConfigTOML(t *testing.T) {
	cfg, err := DecodeConfig([]byte(sampleTOML), ".toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Test", cfg.Window.Name)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, float32(60), cfg.Camera.FOV)
	// untouched sections keep their defaults
	assert.Equal(t, "assets/shaders/scene.vert", cfg.Shaders.Vertex)

	require.Len(t, cfg.Objects, 1)
	o := cfg.Objects[0]
	assert.Equal(t, [3]float32{1, 2, 3}, o.Position)
	assert.Equal(t, [3]float32{1, 1, 1}, o.Scale)
	assert.Equal(t, "textures/cube.png", o.Textures.Albedo)
}

func TestDecodeConfigYAML(t *testing.T) {
	cfg, err := DecodeConfig([]byte(sampleYAML), ".yml")
	require.NoError(t, err)

	assert.Equal(t, "vulkan", cfg.Window.Backend)
	assert.Equal(t, uint32(640), cfg.Window.Width)
	require.Len(t, cfg.Objects, 1)
	assert.Equal(t, [3]float32{2, 2, 2}, cfg.Objects[0].Scale)
}

func TestDecodeConfigUnknownExtension(t *testing.T) {
	_, err := DecodeConfig([]byte("{}"), ".json")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", cfg.Window.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, ErrInvalidConfig},
		{"fov too wide", func(c *Config) { c.Camera.FOV = 180 }, ErrInvalidConfig},
		{"far before near", func(c *Config) { c.Camera.Far = c.Camera.Near }, ErrInvalidConfig},
		{"unknown backend", func(c *Config) { c.Window.Backend = "metal" }, ErrUnknownBackend},
		{"object without mesh", func(c *Config) { c.Objects = []ObjectConfig{{Name: "x"}} }, ErrInvalidConfig},
		{"vulkan without spirv", func(c *Config) {
			c.Window.Backend = "vulkan"
			c.Shaders.VulkanFragment = ""
		}, ErrInvalidConfig},
		{"vulkan ignores glsl paths", func(c *Config) {
			c.Window.Backend = "Vulkan"
			c.Shaders.Vertex = ""
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShaderConfigFor(t *testing.T) {
	s := ShaderConfig{Vertex: "a.vert", Fragment: "a.frag", VulkanVertex: "a.vert.spv", VulkanFragment: "a.frag.spv"}

	v, f := s.For("opengl")
	assert.Equal(t, "a.vert", v)
	assert.Equal(t, "a.frag", f)

	v, f = s.For("VULKAN")
	assert.Equal(t, "a.vert.spv", v)
	assert.Equal(t, "a.frag.spv", f)
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, SetLogLevel("warn"))
	assert.Error(t, SetLogLevel("loud"))
	assert.NoError(t, SetLogLevel("debug"))
}
