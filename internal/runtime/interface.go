// Package runtime runs the media tools (ffprobe, ffmpeg) the pipeline drives.
// Implementations include raw host processes and Docker containers.
package runtime

import (
	"context"
	"io"
)

// Runtime starts tool invocations.
type Runtime interface {
	// Start begins execution of a command and returns a handle.
	Start(ctx context.Context, opts StartOptions) (Handle, error)
}

// StartOptions contains the parameters for starting a command.
type StartOptions struct {
	// Image is the container image. Ignored by the exec runtime.
	Image   string
	Command []string
	Env     map[string]string
	// Mounts lists host directories the command reads or writes. Container
	// runtimes bind them at the same path; the exec runtime ignores them.
	Mounts []Mount
}

// Mount is a host directory made visible to the command.
type Mount struct {
	Path     string
	ReadOnly bool
}

// ExitResult is the outcome of a finished command.
type ExitResult struct {
	ExitCode int
	Error    error
}

// Handle represents a running command.
type Handle interface {
	// Wait blocks until the command completes. Callers that read
	// StreamLogs must drain it before calling Wait.
	Wait(ctx context.Context) (ExitResult, error)

	// Stop forcefully terminates the command.
	Stop(ctx context.Context) error

	// StreamLogs returns the combined stdout/stderr of the command.
	// The stream ends when the command exits.
	StreamLogs(ctx context.Context) (io.ReadCloser, error)
}
