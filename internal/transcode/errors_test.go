package transcode

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   Kind
	}{
		{"Missing Input", "Error opening input: No such file or directory", KindSourceOpen},
		{"Garbage Input", "in.bin: Invalid data found when processing input", KindSourceOpen},
		{"Unknown Encoder", "Unknown encoder 'libx264'", KindEncoderInit},
		{"Encoder Open", "Error while opening encoder for output stream #0:0", KindEncoderInit},
		{"Output Open", "Could not open output file '/ro/out.mp4'", KindMuxInit},
		{"Header", "Could not write header for output file #0 (incorrect codec parameters ?)", KindMuxInit},
		{"Encode", "Error submitting video frame to the encoder", KindEncodeWrite},
		{"Disk Full", "av_interleaved_write_frame(): No space left on device", KindEncodeWrite},
		{"Trailer", "Error writing trailer of out.mp4: Input/output error", KindMux},
		{"Empty", "", KindMux},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.stderr); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("ffmpeg exited with code 1")
	err := &Error{Kind: KindEncoderInit, Source: "in.mp4", Detail: "Unknown encoder 'libx264'", Err: cause}

	msg := err.Error()
	for _, part := range []string{"encoder init", "in.mp4", "Unknown encoder", "exited with code 1"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("expected Error to unwrap to its cause")
	}
}

func TestDetail_LastNonEmptyLine(t *testing.T) {
	got := detail("first\nsecond\n\n  \n")
	if got != "second" {
		t.Errorf("detail = %q, want second", got)
	}
}

func TestTailBuffer_KeepsTail(t *testing.T) {
	tb := &tailBuffer{max: 4}
	tb.Write([]byte("abc"))
	tb.Write([]byte("defg"))

	if tb.String() != "defg" {
		t.Errorf("tail = %q, want defg", tb.String())
	}
}
