package flat

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/aretw0/kinema/pkg/domain"
)

// document is the Lottie subset the flat rasterizer understands.
type document struct {
	Version string   `json:"v"`
	Rate    float64  `json:"fr"`
	In      float64  `json:"ip"`
	Out     float64  `json:"op"`
	Width   float64  `json:"w"`
	Height  float64  `json:"h"`
	Markers []marker `json:"markers"`
	Layers  []layer  `json:"layers"`
}

type marker struct {
	Name     string  `json:"cm"`
	Time     float64 `json:"tm"`
	Duration float64 `json:"dr"`
}

// layer is an axis-aligned rectangle. When To is set the rectangle slides
// linearly from Rect to To over the layer's in/out range.
type layer struct {
	Name    string      `json:"nm"`
	In      *float64    `json:"ip,omitempty"`
	Out     *float64    `json:"op,omitempty"`
	Rect    [4]float64  `json:"rect"`
	To      *[2]float64 `json:"to,omitempty"`
	Fill    fill        `json:"fill"`
	Opacity *opacity    `json:"o,omitempty"`
}

type fill struct {
	SlotID string    `json:"sid,omitempty"`
	Color  []float64 `json:"c"`
}

type opacity struct {
	SlotID string  `json:"sid,omitempty"`
	Value  float64 `json:"k"`
}

func parse(data []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoad, err)
	}
	switch {
	case !(doc.Rate > 0):
		return nil, fmt.Errorf("%w: frame rate must be positive", domain.ErrLoad)
	case !(doc.Out > doc.In):
		return nil, fmt.Errorf("%w: out point %g must follow in point %g", domain.ErrLoad, doc.Out, doc.In)
	case !(doc.Width > 0 && doc.Height > 0):
		return nil, fmt.Errorf("%w: document has no size", domain.ErrLoad)
	}
	for i, l := range doc.Layers {
		if l.Name == "" {
			return nil, fmt.Errorf("%w: layers[%d] has no name", domain.ErrLoad, i)
		}
		if n := len(l.Fill.Color); n != 0 && n != 3 && n != 4 {
			return nil, fmt.Errorf("%w: layer %q color needs 3 or 4 channels", domain.ErrLoad, l.Name)
		}
	}
	return &doc, nil
}

func (d *document) info() domain.DocumentInfo {
	total := d.Out - d.In
	info := domain.DocumentInfo{
		TotalFrames: total,
		Duration:    total / d.Rate,
		Width:       d.Width,
		Height:      d.Height,
	}
	for _, m := range d.Markers {
		info.Markers = append(info.Markers, domain.Marker{Name: m.Name, Time: m.Time - d.In, Duration: m.Duration})
	}
	seen := map[string]bool{}
	for _, l := range d.Layers {
		for _, sid := range []string{l.Fill.SlotID, l.opacitySlot()} {
			if sid != "" && !seen[sid] {
				seen[sid] = true
				info.Slots = append(info.Slots, sid)
			}
		}
	}
	return info
}

func (l layer) opacitySlot() string {
	if l.Opacity == nil {
		return ""
	}
	return l.Opacity.SlotID
}

// visible reports whether the layer is shown at frame (relative to the
// document in point).
func (l layer) visible(frame, docIn, docOut float64) bool {
	in, out := docIn, docOut
	if l.In != nil {
		in = *l.In
	}
	if l.Out != nil {
		out = *l.Out
	}
	abs := frame + docIn
	return abs >= in && abs < out
}

// bounds returns the rectangle at frame.
func (l layer) bounds(frame, docIn, docOut float64) [4]float64 {
	r := l.Rect
	if l.To == nil {
		return r
	}
	in, out := docIn, docOut
	if l.In != nil {
		in = *l.In
	}
	if l.Out != nil {
		out = *l.Out
	}
	span := out - 1 - in
	t := 1.0
	if span > 0 {
		t = math.Max(0, math.Min(1, (frame+docIn-in)/span))
	}
	r[0] += (l.To[0] - r[0]) * t
	r[1] += (l.To[1] - r[1]) * t
	return r
}
