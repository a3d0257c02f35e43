package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	PixFmt        string
	Width         int
	Height        int
	AvgFrameRate  string
	IsAttachedPic bool
}

// Result is the parsed output of a single ffprobe JSON call.
type Result struct {
	Format       FormatInfo
	VideoStreams []VideoStream
}

// BestVideo returns the video stream a decoder would pick: the largest
// frame area among real video streams, first stream winning ties.
// Cover art (attached pictures) is never chosen.
func (r *Result) BestVideo() (VideoStream, bool) {
	var best VideoStream
	found := false
	for _, vs := range r.VideoStreams {
		if vs.IsAttachedPic || vs.Width <= 0 || vs.Height <= 0 {
			continue
		}
		if !found || vs.Width*vs.Height > best.Width*best.Height {
			best = vs
			found = true
		}
	}
	return best, found
}
