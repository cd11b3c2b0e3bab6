package engine

import (
	"os"

	"github.com/spaghettifunk/ember/engine/core"
)

type ApplicationConfig struct {
	// Path of the TOML or YAML config file. Empty means defaults only.
	ConfigPath string
	// Directory asset paths are resolved against.
	AssetRoot string
	// Enables the Vulkan validation layers.
	Debug bool
	// Filled by Load when nil.
	Config *core.Config
}

// Load reads the config file, if any, and applies its log level.
func (a *ApplicationConfig) Load() error {
	if a.Config == nil {
		switch {
		case a.ConfigPath == "":
			a.Config = core.DefaultConfig()
		default:
			if _, err := os.Stat(a.ConfigPath); os.IsNotExist(err) {
				core.LogWarn("config file %s not found, using defaults", a.ConfigPath)
				a.Config = core.DefaultConfig()
				break
			}
			cfg, err := core.LoadConfig(a.ConfigPath)
			if err != nil {
				return err
			}
			a.Config = cfg
		}
	}
	if a.AssetRoot == "" {
		a.AssetRoot = "assets"
	}
	if err := core.SetLogLevel(a.Config.LogLevel); err != nil {
		core.LogWarn("unknown log level %q, keeping debug", a.Config.LogLevel)
	}
	return nil
}
