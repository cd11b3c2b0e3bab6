//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles the Vulkan GLSL shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Tidies the module and builds the engine binary.
func (Build) Engine() error {
	if err := goModTidy(); err != nil {
		return err
	}
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/ember", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	sources, err := filepath.Glob(filepath.Join(shaderDir, "*.vk.*"))
	if err != nil {
		return err
	}
	for _, src := range sources {
		if strings.HasSuffix(src, ".spv") {
			continue
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", src+".spv"), withStream()); err != nil {
			return fmt.Errorf("compiling %s: %w", src, err)
		}
	}
	return nil
}
