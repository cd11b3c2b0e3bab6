//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine with the OpenGL backend and ember.toml.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "ember.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles the SPIR-V shaders and runs the engine with ember.vulkan.yaml.
func (Run) Vulkan() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run engine on vulkan...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "ember.vulkan.yaml", "-debug"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests of every package.
func (Run) Tests() error {
	if _, err := executeCmd("go", withArgs("test", "./engine/..."), withStream()); err != nil {
		return err
	}
	return nil
}
