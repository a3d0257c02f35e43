// Package ladder maps quality tier labels to target frame sizes.
package ladder

// Target is the frame size a tier is encoded at.
type Target struct {
	Width  int
	Height int
}

var tiers = map[string]Target{
	"4K":    {Width: 3840, Height: 2160},
	"1080p": {Width: 1920, Height: 1080},
	"720p":  {Width: 1280, Height: 720},
	"480p":  {Width: 854, Height: 480},
}

// Fallback is used for labels missing from the table.
var Fallback = tiers["480p"]

// Resolve returns the target for label. Unknown labels resolve to Fallback
// rather than failing; use Known when a caller wants to reject them.
func Resolve(label string) Target {
	if t, ok := tiers[label]; ok {
		return t
	}
	return Fallback
}

// Known reports whether label is in the tier table.
func Known(label string) bool {
	_, ok := tiers[label]
	return ok
}

// Exceeds reports whether encoding to t would upscale a source of the given
// size on either axis. Such tiers are skipped, not failed.
func (t Target) Exceeds(srcWidth, srcHeight int) bool {
	return t.Width > srcWidth || t.Height > srcHeight
}
