// Package probe inspects a source with ffprobe and picks the video stream
// the pipeline decodes.
package probe
