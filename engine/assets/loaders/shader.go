package loaders

import (
	"fmt"
	"os"
)

// ShaderLoader reads GLSL source text verbatim.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	return data, nil
}
