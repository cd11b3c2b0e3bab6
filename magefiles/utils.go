//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type execConfig struct {
	args   []string
	stream bool
}

type execOption func(*execConfig)

func withArgs(args ...string) execOption {
	return func(c *execConfig) { c.args = args }
}

// withStream mirrors the command output to the terminal even without -v.
func withStream() execOption {
	return func(c *execConfig) { c.stream = true }
}

// executeCmd runs command and returns its combined output. Quiet runs print
// the captured output only when the command fails.
func executeCmd(command string, options ...execOption) (string, error) {
	cfg := execConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	fmt.Printf("Executing: %s %s\n", command, strings.Join(cfg.args, " "))

	var out bytes.Buffer
	cmd := exec.Command(command, cfg.args...)
	stream := cfg.stream || mg.Verbose()
	if stream {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	} else {
		cmd.Stdout, cmd.Stderr = &out, &out
	}

	if err := cmd.Run(); err != nil {
		if !stream {
			fmt.Printf("... %s failed:\n%s\n", command, out.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return out.String(), nil
}

func goModTidy() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
