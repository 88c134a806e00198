package block

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a block command and returns its standard output.
type Runner interface {
	Run(cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec. A command runs to completion, there is no timeout.
type ExecRunner struct{}

func (ExecRunner) Run(cmd Command) (string, error) {
	if cmd.Name == "" {
		return "", errors.New("empty command")
	}

	var stderr bytes.Buffer
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Stderr = &stderr

	out, err := c.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", cmd, err, msg)
		}
		return "", fmt.Errorf("%s: %w", cmd, err)
	}

	return strings.ToValidUTF8(string(out), "�"), nil
}

// RunnerFunc adapts a function to a Runner.
type RunnerFunc func(cmd Command) (string, error)

func (f RunnerFunc) Run(cmd Command) (string, error) {
	return f(cmd)
}
