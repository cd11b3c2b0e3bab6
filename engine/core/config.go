package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config describes the window, the camera, the shaders and the scene the
// engine boots with. It is read from a TOML or YAML file.
type Config struct {
	LogLevel string         `toml:"log_level" yaml:"log_level"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Shaders  ShaderConfig   `toml:"shaders" yaml:"shaders"`
	Objects  []ObjectConfig `toml:"objects" yaml:"objects"`
}

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name" yaml:"name"`
	// Window starting width and height.
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
	// Window starting position.
	PosX uint32 `toml:"pos_x" yaml:"pos_x"`
	PosY uint32 `toml:"pos_y" yaml:"pos_y"`
	// "opengl" or "vulkan"
	Backend    string     `toml:"backend" yaml:"backend"`
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

type CameraConfig struct {
	FOV  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
}

// ShaderConfig holds GLSL sources for OpenGL and SPIR-V modules for Vulkan.
type ShaderConfig struct {
	Vertex         string `toml:"vertex" yaml:"vertex"`
	Fragment       string `toml:"fragment" yaml:"fragment"`
	VulkanVertex   string `toml:"vulkan_vertex" yaml:"vulkan_vertex"`
	VulkanFragment string `toml:"vulkan_fragment" yaml:"vulkan_fragment"`
}

// For returns the vertex and fragment paths used by backend.
func (s ShaderConfig) For(backend string) (string, string) {
	if strings.EqualFold(backend, "vulkan") {
		return s.VulkanVertex, s.VulkanFragment
	}
	return s.Vertex, s.Fragment
}

type TextureConfig struct {
	Albedo   string `toml:"albedo" yaml:"albedo"`
	Normal   string `toml:"normal" yaml:"normal"`
	Specular string `toml:"specular" yaml:"specular"`
	Metallic string `toml:"metallic" yaml:"metallic"`
	Emission string `toml:"emission" yaml:"emission"`
}

type ObjectConfig struct {
	Name     string        `toml:"name" yaml:"name"`
	Mesh     string        `toml:"mesh" yaml:"mesh"`
	Textures TextureConfig `toml:"textures" yaml:"textures"`
	Position [3]float32    `toml:"position" yaml:"position"`
	// degrees per axis
	Rotation [3]float32 `toml:"rotation" yaml:"rotation"`
	Scale    [3]float32 `toml:"scale" yaml:"scale"`
	// degrees per second per axis
	Spin [3]float32 `toml:"spin" yaml:"spin"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Name:       "Ember",
			Width:      1280,
			Height:     720,
			PosX:       100,
			PosY:       100,
			Backend:    "opengl",
			ClearColor: [4]float32{0.0, 0.0, 0.2, 1.0},
		},
		Camera: CameraConfig{
			FOV:  45.0,
			Near: 0.1,
			Far:  100.0,
		},
		Shaders: ShaderConfig{
			Vertex:         "assets/shaders/scene.vert",
			Fragment:       "assets/shaders/scene.frag",
			VulkanVertex:   "assets/shaders/scene.vk.vert.spv",
			VulkanFragment: "assets/shaders/scene.vk.frag.spv",
		},
	}
}

// LoadConfig reads the file at path on top of DefaultConfig. The format is
// chosen by extension: .toml, .yaml or .yml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return DecodeConfig(data, filepath.Ext(path))
}

func DecodeConfig(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, ext)
	}
	for i := range cfg.Objects {
		if cfg.Objects[i].Scale == ([3]float32{}) {
			cfg.Objects[i].Scale = [3]float32{1, 1, 1}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov must be in (0, 180), got %f", ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera planes must satisfy 0 < near < far, got near=%f far=%f", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	switch strings.ToLower(c.Window.Backend) {
	case "opengl", "vulkan":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Window.Backend)
	}
	if v, f := c.Shaders.For(c.Window.Backend); v == "" || f == "" {
		return fmt.Errorf("%w: %s backend needs a vertex and a fragment shader", ErrInvalidConfig, c.Window.Backend)
	}
	for i, o := range c.Objects {
		if o.Mesh == "" {
			return fmt.Errorf("%w: object %d (%s) has no mesh", ErrInvalidConfig, i, o.Name)
		}
	}
	return nil
}
