package transcode

import (
	"fmt"
	"strconv"

	"transcodeplane/internal/ladder"
)

// Fixed encode profile.
const (
	VideoCodec  = "libx264"
	PixelFormat = "yuv420p"
	CRF         = 23
	Preset      = "medium"
	FrameRate   = 30
	Container   = "mp4"
)

// BuildArgs returns the full ffmpeg command line (binary first) for encoding
// stream streamIndex of source into output at target.
func BuildArgs(bin, source, output string, streamIndex int, target ladder.Target) []string {
	if bin == "" {
		bin = "ffmpeg"
	}

	args := []string{bin,
		"-hide_banner", "-nostdin", "-nostats",
		"-loglevel", "error",
		"-y",
		// A packet that fails to decode drops its frame, it never fails the run.
		"-max_error_rate", "1",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-an", "-sn", "-dn",
		"-map_metadata", "-1",
		"-map_chapters", "-1",
		"-vf", filterGraph(target),
		// One encoded frame per decoded frame; timing comes from setpts.
		"-fps_mode", "passthrough",
		"-enc_time_base", "1/" + strconv.Itoa(FrameRate),
		"-c:v", VideoCodec,
		"-preset", Preset,
		"-crf", strconv.Itoa(CRF),
		"-pix_fmt", PixelFormat,
		"-f", Container,
		output,
	}
	return args
}

// filterGraph scales bilinearly to the target, converts to the output pixel
// format and renumbers frames 0,1,2... in a 1/30 s time base.
func filterGraph(target ladder.Target) string {
	return fmt.Sprintf("scale=%d:%d:flags=bilinear,format=%s,settb=1/%d,setpts=N",
		target.Width, target.Height, PixelFormat, FrameRate)
}
