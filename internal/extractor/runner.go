// Package extractor drives the metadata extractor subprocess: it turns
// a page URL into a structured metadata document and direct media URLs,
// and classifies extractor failures.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runFunc executes a subprocess and returns its stdout, stderr and exit
// code. It is the seam tests use to stub extractor invocations.
type runFunc func(ctx context.Context, env []string, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)

func runCommand(ctx context.Context, env []string, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitCode(), err
		}
		return nil, nil, -1, fmt.Errorf("run %s: %w", name, err)
	}

	return outBuf.Bytes(), errBuf.Bytes(), 0, nil
}

// subprocessEnv returns the environment for the extractor with auxPath
// prepended to PATH, so extractor plugins can locate helper binaries.
func subprocessEnv(auxPath string) []string {
	env := os.Environ()
	if auxPath == "" {
		return env
	}
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + auxPath + string(os.PathListSeparator) + kv[len("PATH="):]
			return env
		}
	}
	return append(env, "PATH="+auxPath)
}
