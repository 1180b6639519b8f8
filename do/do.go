// Package do runs the external commands the somatic pipeline shells out to,
// with uniform logging and error capture. Orchestration code takes an
// Executor so tests can observe or suppress process invocation.
package do

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Executor runs one external command to completion. desc names the pipeline
// step for logs and error messages.
type Executor interface {
	Run(ctx context.Context, desc string, cmd *exec.Cmd) error
}

// RunFunc adapts a function to the Executor interface.
type RunFunc func(ctx context.Context, desc string, cmd *exec.Cmd) error

// Run implements Executor.
func (f RunFunc) Run(ctx context.Context, desc string, cmd *exec.Cmd) error {
	return f(ctx, desc, cmd)
}

// Command returns an *exec.Cmd bound to ctx, so cancelling the context kills
// the process.
func Command(ctx context.Context, name string, arg ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, arg...)
}

// Lookup resolves prog on PATH, returning an error that names the missing
// tool. Callers check required tools before staging any output.
func Lookup(prog string) (string, error) {
	path, err := exec.LookPath(prog)
	if err != nil {
		return "", errors.E(err, "external tool not found on PATH: "+prog)
	}
	return path, nil
}

// Local is the Executor used outside of tests.
type Local struct{}

// Run logs and runs cmd. When the caller has not claimed Stderr, it is
// captured and its tail folded into any returned error.
func (Local) Run(ctx context.Context, desc string, cmd *exec.Cmd) error {
	if err := ctx.Err(); err != nil {
		return errors.E(err, desc)
	}
	log.Printf("%s: %s", desc, strings.Join(cmd.Args, " "))
	var stderr bytes.Buffer
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}
	if err := cmd.Run(); err != nil {
		if tail := tailLines(stderr.Bytes(), 20); tail != "" {
			return errors.E(err, desc+" failed: "+tail)
		}
		return errors.E(err, desc+" failed")
	}
	if stderr.Len() > 0 {
		log.Debug.Printf("%s stderr: %s", desc, tailLines(stderr.Bytes(), 5))
	}
	return nil
}

// tailLines returns the last n non-empty lines of b as a single string.
func tailLines(b []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
