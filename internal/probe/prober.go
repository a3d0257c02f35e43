package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"transcodeplane/internal/runtime"
)

// Prober runs ffprobe through a runtime.
type Prober struct {
	rt    runtime.Runtime
	bin   string
	image string
}

// NewProber creates a prober invoking bin (default "ffprobe") on rt.
// image is only used by container runtimes.
func NewProber(rt runtime.Runtime, bin, image string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{rt: rt, bin: bin, image: image}
}

// Probe runs a single ffprobe JSON call against source and returns the
// parsed result.
func (p *Prober) Probe(ctx context.Context, source string, mounts []runtime.Mount) (*Result, error) {
	handle, err := p.rt.Start(ctx, runtime.StartOptions{
		Image: p.image,
		Command: []string{p.bin,
			"-v", "error",
			"-print_format", "json",
			"-show_format", "-show_streams",
			source,
		},
		Mounts: mounts,
	})
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", source, err)
	}

	rc, err := handle.StreamLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", source, err)
	}
	out, readErr := io.ReadAll(rc)
	rc.Close()

	res, err := handle.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", source, err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("ffprobe %q: read output: %w", source, readErr)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("ffprobe %q exited with code %d: %s", source, res.ExitCode, lastLine(out))
	}

	return ParseJSON(jsonBody(out))
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	Index        int            `json:"index"`
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	PixFmt       string         `json:"pix_fmt"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

func buildResult(raw *ffprobeOutput) *Result {
	r := &Result{
		Format: FormatInfo{
			Filename:   raw.Format.Filename,
			FormatName: raw.Format.FormatName,
			Duration:   parseFloat(raw.Format.Duration),
			Size:       parseInt64(raw.Format.Size),
		},
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		r.VideoStreams = append(r.VideoStreams, VideoStream{
			Index:         s.Index,
			Codec:         s.CodecName,
			PixFmt:        s.PixFmt,
			Width:         s.Width,
			Height:        s.Height,
			AvgFrameRate:  s.AvgFrameRate,
			IsAttachedPic: s.Disposition["attached_pic"] == 1,
		})
	}
	return r
}

// ffprobe returns numbers as strings

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// jsonBody strips diagnostics that share the output stream with the JSON
// document (stderr is merged into stdout by the runtimes).
func jsonBody(out []byte) []byte {
	start := bytes.IndexByte(out, '{')
	end := bytes.LastIndexByte(out, '}')
	if start < 0 || end < start {
		return out
	}
	return out[start : end+1]
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
