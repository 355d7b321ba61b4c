// Package creative builds deterministic image-generation prompts from an
// analysis result, a chosen audience segment, a format archetype, and a
// target size, and resolves sizes to canonical aspect ratios.
package creative

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ratio is a canonical aspect-ratio tag. The closed set is shared with the
// presentation layer and the image backend.
type Ratio string

const (
	RatioSquare     Ratio = "1:1"
	RatioVertical   Ratio = "9:16"
	RatioHorizontal Ratio = "16:9"
	RatioPortrait   Ratio = "4:5"
)

// Size is a resolved target size: pixel dimensions plus the canonical ratio.
type Size struct {
	ID     string
	Width  int
	Height int
	Ratio  Ratio
}

// Label returns the human-readable pixel dimensions, e.g. "1080x1920".
func (s Size) Label() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// sizePresets maps symbolic size IDs to pixel dimensions. This table is a
// byte-for-byte contract with the presentation layer.
var sizePresets = map[string]Size{
	"instagram-post":     {ID: "instagram-post", Width: 1080, Height: 1080, Ratio: RatioSquare},
	"instagram-story":    {ID: "instagram-story", Width: 1080, Height: 1920, Ratio: RatioVertical},
	"instagram-portrait": {ID: "instagram-portrait", Width: 1080, Height: 1350, Ratio: RatioPortrait},
	"facebook-post":      {ID: "facebook-post", Width: 1200, Height: 630, Ratio: RatioHorizontal},
	"facebook-story":     {ID: "facebook-story", Width: 1080, Height: 1920, Ratio: RatioVertical},
	"youtube-thumbnail":  {ID: "youtube-thumbnail", Width: 1280, Height: 720, Ratio: RatioHorizontal},
}

// ratioTolerance bounds how far a raw dimension ratio may drift from a
// known ratio and still be classified as it.
const ratioTolerance = 0.1

// Resolve maps a symbolic size ID or a raw "WIDTHxHEIGHT" string to a Size
// with a canonical ratio tag. Unknown symbolic IDs resolve to a 1080x1080
// square; this is a fallback, never an error. Resolve is deterministic and
// is shared by the generation and resize paths.
func Resolve(sizeID string) Size {
	sizeID = strings.TrimSpace(strings.ToLower(sizeID))

	if preset, ok := sizePresets[sizeID]; ok {
		return preset
	}

	if w, h, ok := parseDimensions(sizeID); ok {
		return Size{ID: sizeID, Width: w, Height: h, Ratio: classifyRatio(w, h)}
	}

	return Size{ID: sizeID, Width: 1080, Height: 1080, Ratio: RatioSquare}
}

func parseDimensions(s string) (int, int, bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func classifyRatio(w, h int) Ratio {
	if w == h {
		return RatioSquare
	}

	if h > w {
		r := float64(h) / float64(w)
		switch {
		case math.Abs(r-16.0/9.0) < ratioTolerance:
			return RatioVertical
		case math.Abs(r-5.0/4.0) < ratioTolerance:
			return RatioPortrait
		default:
			return RatioVertical
		}
	}

	r := float64(w) / float64(h)
	switch {
	case math.Abs(r-16.0/9.0) < ratioTolerance:
		return RatioHorizontal
	case math.Abs(r-5.0/4.0) < ratioTolerance:
		return RatioPortrait
	default:
		return RatioHorizontal
	}
}

// ResizeTarget picks the destination size for the resize round-trip: a
// vertical creative becomes square, anything else becomes a story. This is
// a fixed toggle, not a general size selector.
func ResizeTarget(currentSizeID string) Size {
	if Resolve(currentSizeID).Ratio == RatioVertical {
		return sizePresets["instagram-post"]
	}
	return sizePresets["instagram-story"]
}
