package extract

import (
	"context"
	"os/exec"
)

// CommandRunner executes an external command and returns its combined
// standard output. It exists so extraction routines that shell out (PDF via
// pdftotext) can be exercised in tests without the binary installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
