package domain

import "math"

// Marker is a named time region inside an animation document.
type Marker struct {
	Name     string  `json:"name" yaml:"name"`
	Time     float64 `json:"time" yaml:"time"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Segment resolves the marker against a document with totalFrames frames.
// The end frame never exceeds the last frame of the document.
func (m Marker) Segment(totalFrames float64) (start, end float64) {
	last := math.Max(0, totalFrames-1)
	start = math.Min(math.Max(0, m.Time), last)
	end = math.Min(m.Time+m.Duration, last)
	if end < start {
		end = start
	}
	return start, end
}

// FindMarker returns the marker called name, if any.
func FindMarker(markers []Marker, name string) (Marker, bool) {
	for _, m := range markers {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}

// DocumentInfo describes a loaded animation document as reported by the
// rasterizer.
type DocumentInfo struct {
	TotalFrames float64 // valid frames are [0, TotalFrames-1]
	Duration    float64 // seconds
	Width       float64
	Height      float64
	Markers     []Marker
	Slots       []string // slot ids the document declares
}

// FrameRate is the number of frames per second implied by the document.
func (d DocumentInfo) FrameRate() float64 {
	if d.Duration <= 0 {
		return 0
	}
	return d.TotalFrames / d.Duration
}

// LastFrame is the highest valid frame number.
func (d DocumentInfo) LastFrame() float64 {
	return math.Max(0, d.TotalFrames-1)
}
