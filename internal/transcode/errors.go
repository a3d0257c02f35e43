package transcode

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies where in the pipeline a failure happened.
type Kind int

const (
	// KindSourceOpen: the source could not be opened, demuxed, or has no video stream.
	KindSourceOpen Kind = iota + 1
	// KindEncoderInit: the video encoder could not be configured or opened.
	KindEncoderInit
	// KindMuxInit: the destination could not be created or its header written.
	KindMuxInit
	// KindEncodeWrite: encoding or writing a frame failed mid-stream.
	KindEncodeWrite
	// KindMux: any other muxing failure, including the trailer.
	KindMux
)

func (k Kind) String() string {
	switch k {
	case KindSourceOpen:
		return "source open"
	case KindEncoderInit:
		return "encoder init"
	case KindMuxInit:
		return "mux init"
	case KindEncodeWrite:
		return "encode write"
	case KindMux:
		return "mux"
	default:
		return "unknown"
	}
}

// Error is the pipeline's structured failure.
type Error struct {
	Kind   Kind
	Source string
	// Detail is the most relevant tool diagnostic, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed for %s", e.Kind, e.Source)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Pre-compiled patterns for classifying ffmpeg stderr. Checked in order;
// the first match wins.
var classifiers = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindSourceOpen, regexp.MustCompile(
		`(?i)Error opening input|Invalid data found when processing input|` +
			`Stream map .* matches no streams|Output file .* does not contain any stream`)},
	{KindEncoderInit, regexp.MustCompile(
		`(?i)Unknown encoder|Encoder not found|Error while opening encoder|` +
			`Could not open encoder|Error initializing output stream|Error setting option`)},
	{KindMuxInit, regexp.MustCompile(
		`(?i)Error opening output|Could not open output file|Could not write header|` +
			`Unable to choose an output format|Error initializing the muxer`)},
	{KindEncodeWrite, regexp.MustCompile(
		`(?i)Error submitting (a )?(video )?frame|Error (while )?encoding|` +
			`Error submitting a packet to the muxer|No space left on device`)},
}

// Classify maps ffmpeg diagnostics to a failure Kind. Output that matches
// nothing is a generic mux failure.
func Classify(stderr string) Kind {
	for _, c := range classifiers {
		if c.re.MatchString(stderr) {
			return c.kind
		}
	}
	return KindMux
}

// detail picks the last non-empty line of tool output.
func detail(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
