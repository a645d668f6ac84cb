package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"streamgate/internal/domain"
)

// StreamHandle is a live, read-once byte stream bound to a transcoder
// subprocess's standard output. It is only ever returned after the
// process demonstrably started; a failed launch surfaces as an error,
// never as an empty handle. Close terminates the subprocess and reaps
// it.
type StreamHandle struct {
	rc     io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	cancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func (h *StreamHandle) Read(p []byte) (int, error) {
	return h.rc.Read(p)
}

// Close tears the stream down: the pipe is closed, the subprocess is
// killed if still running, and its exit is reaped. If the process had
// already failed on its own, the failure is surfaced with its stderr
// verbatim.
func (h *StreamHandle) Close() error {
	h.closeOnce.Do(func() {
		h.rc.Close()
		if h.cancel != nil {
			h.cancel()
		}
		if h.cmd == nil {
			return
		}
		err := h.cmd.Wait()

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			// A positive exit code means the transcoder failed by
			// itself; -1 is the kill we just delivered.
			h.closeErr = &domain.TranscoderError{
				Cmd:    strings.Join(h.cmd.Args, " "),
				Stderr: strings.TrimSpace(h.stderr.String()),
			}
		}
	})
	return h.closeErr
}

// launchProcess starts the transcoder with its stdout connected to a
// pipe the caller reads incrementally. Pipe and start failures are
// reported before any handle exists. The call returns as soon as the
// process is running; bytes are produced asynchronously from the
// caller's consumption.
func launchProcess(ctx context.Context, name string, args []string) (*StreamHandle, error) {
	ctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &domain.PipeError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &domain.PipeError{Err: err}
	}

	return &StreamHandle{
		rc:     stdout,
		cmd:    cmd,
		stderr: &stderr,
		cancel: cancel,
	}, nil
}

// RawHandle is a live byte stream bound to an HTTP response body.
type RawHandle struct {
	rc io.ReadCloser
}

func (h *RawHandle) Read(p []byte) (int, error) { return h.rc.Read(p) }

// Close abandons the response body, which cancels the underlying
// request.
func (h *RawHandle) Close() error { return h.rc.Close() }
