// Package transcode runs the single-rendition pipeline: probe the source,
// apply the no-upscale policy, then demux, decode, scale, encode and mux one
// H.264 rendition with ffmpeg.
//
// The encode profile is fixed. Every rendition is libx264 at CRF 23 with the
// medium preset, planar YUV 4:2:0, bilinear scaling and a 1/30 s time base in
// which frame N carries pts N. Audio, subtitles, data streams, metadata and
// chapters are never carried over.
package transcode
