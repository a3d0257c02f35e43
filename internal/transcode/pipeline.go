package transcode

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"transcodeplane/internal/ladder"
	"transcodeplane/internal/probe"
	"transcodeplane/internal/runtime"
)

// maxDiagnostics bounds how much tool output is kept for classification.
const maxDiagnostics = 64 << 10

// Config selects the tool binaries and, for container runtimes, the image
// providing them.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	Image       string
}

// Outcome describes a successful Transcode call.
type Outcome struct {
	// Skipped is set when the target would upscale the source; no output
	// file was written.
	Skipped bool
	// Source is the video stream that was (or would have been) decoded.
	Source probe.VideoStream
}

// Pipeline transcodes one source into one rendition per call. It holds no
// per-call state and is safe for concurrent use.
type Pipeline struct {
	rt     runtime.Runtime
	prober *probe.Prober
	cfg    Config
}

// New creates a pipeline running its tools on rt.
func New(rt runtime.Runtime, cfg Config) *Pipeline {
	return &Pipeline{
		rt:     rt,
		prober: probe.NewProber(rt, cfg.FFprobePath, cfg.Image),
		cfg:    cfg,
	}
}

// Transcode encodes source into output at target. A nil error with
// Outcome.Skipped set means the tier would upscale and nothing was written.
// Failures are returned as *Error and leave no file at output.
func (p *Pipeline) Transcode(ctx context.Context, source, output string, target ladder.Target) (Outcome, error) {
	mounts := mountsFor(source, output)

	info, err := p.prober.Probe(ctx, source, mounts)
	if err != nil {
		return Outcome{}, &Error{Kind: KindSourceOpen, Source: source, Err: err}
	}
	stream, ok := info.BestVideo()
	if !ok {
		return Outcome{}, &Error{Kind: KindSourceOpen, Source: source, Detail: "no video stream"}
	}

	if target.Exceeds(stream.Width, stream.Height) {
		return Outcome{Skipped: true, Source: stream}, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Outcome{}, &Error{Kind: KindMuxInit, Source: source, Err: err}
	}

	handle, err := p.rt.Start(ctx, runtime.StartOptions{
		Image:   p.cfg.Image,
		Command: BuildArgs(p.cfg.FFmpegPath, source, output, stream.Index, target),
		Mounts:  mounts,
	})
	if err != nil {
		return Outcome{}, &Error{Kind: KindEncoderInit, Source: source, Err: err}
	}

	diag := &tailBuffer{max: maxDiagnostics}
	if rc, err := handle.StreamLogs(ctx); err == nil {
		io.Copy(diag, rc)
		rc.Close()
	}

	res, err := handle.Wait(ctx)
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("ffmpeg exited with code %d", res.ExitCode)
	}
	if err != nil {
		os.Remove(output)
		return Outcome{}, &Error{
			Kind:   Classify(diag.String()),
			Source: source,
			Detail: detail(diag.String()),
			Err:    err,
		}
	}

	return Outcome{Source: stream}, nil
}

// mountsFor lists the host directories a containerized tool needs: the
// source's directory (read-only, local files only) and the output directory.
func mountsFor(source, output string) []runtime.Mount {
	var mounts []runtime.Mount
	if u, err := url.Parse(source); err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := source
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		if abs, err := filepath.Abs(path); err == nil {
			mounts = append(mounts, runtime.Mount{Path: filepath.Dir(abs), ReadOnly: true})
		}
	}
	if abs, err := filepath.Abs(output); err == nil {
		dir := filepath.Dir(abs)
		if len(mounts) == 1 && mounts[0].Path == dir {
			// A directory may only be bound once.
			mounts[0].ReadOnly = false
		} else {
			mounts = append(mounts, runtime.Mount{Path: dir})
		}
	}
	return mounts
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
