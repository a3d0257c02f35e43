package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// ExecRuntime implements the Runtime interface using host processes.
type ExecRuntime struct{}

// ExecHandle represents a running host process.
type ExecHandle struct {
	cmd    *exec.Cmd
	reader *io.PipeReader
	done   chan struct{}

	mu       sync.Mutex
	result   ExitResult
	streamed bool
}

// NewExecRuntime creates a new process-based runtime.
func NewExecRuntime() *ExecRuntime {
	return &ExecRuntime{}
}

// Start implements Runtime.Start using os/exec.
func (e *ExecRuntime) Start(ctx context.Context, opts StartOptions) (Handle, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("command is required")
	}

	// The process is not bound to ctx: running tools are never cancelled
	// by the caller, only by an explicit Stop.
	cmd := exec.Command(opts.Command[0], opts.Command[1:]...)
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("failed to start %s: %w", opts.Command[0], err)
	}

	h := &ExecHandle{
		cmd:    cmd,
		reader: pr,
		done:   make(chan struct{}),
	}

	go func() {
		err := cmd.Wait()
		pw.Close()

		res := ExitResult{ExitCode: 0}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
			} else {
				res.ExitCode = -1
				res.Error = err
			}
		}

		h.mu.Lock()
		h.result = res
		h.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// Wait implements Handle.Wait.
func (h *ExecHandle) Wait(ctx context.Context) (ExitResult, error) {
	h.mu.Lock()
	streamed := h.streamed
	h.mu.Unlock()
	if !streamed {
		// Nobody will read the output; discard it so the process can exit.
		go io.Copy(io.Discard, h.reader)
	}

	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result, h.result.Error
	case <-ctx.Done():
		return ExitResult{ExitCode: -1, Error: ctx.Err()}, ctx.Err()
	}
}

// Stop implements Handle.Stop. It sends SIGTERM, then kills the process if
// it has not exited when ctx expires.
func (h *ExecHandle) Stop(ctx context.Context) error {
	if h.cmd.Process == nil {
		return nil
	}
	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		select {
		case <-h.done:
			return nil
		default:
			return err
		}
	}

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		h.reader.Close()
		return h.cmd.Process.Kill()
	}
}

// StreamLogs implements Handle.StreamLogs. The stream can be taken once.
func (h *ExecHandle) StreamLogs(ctx context.Context) (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamed {
		return nil, errors.New("log stream already taken")
	}
	h.streamed = true
	return h.reader, nil
}
