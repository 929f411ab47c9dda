// Package flat is a reference rasterizer for a flat subset of Lottie:
// solid rectangle layers whose fill color and opacity may be bound to
// theme slots. It exists for tests, the CLI and headless hosts that only
// need timing, hit-testing and slot plumbing.
package flat

import (
	"fmt"
	"math"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/lucasb-eyer/go-colorful"
)

// Rasterizer implements ports.Rasterizer.
type Rasterizer struct {
	doc        *document
	width      uint32
	height     uint32
	viewport   [4]int32
	layout     domain.Layout
	background uint32
	slots      map[string]domain.SlotValue
	buffer     []uint32
	lastFrame  float64
}

// New returns a rasterizer with no document and no target.
func New() *Rasterizer {
	return &Rasterizer{layout: domain.DefaultLayout()}
}

func (r *Rasterizer) Load(data []byte) error {
	doc, err := parse(data)
	if err != nil {
		return err
	}
	r.doc = doc
	r.slots = nil
	r.lastFrame = 0
	return nil
}

func (r *Rasterizer) Info() domain.DocumentInfo {
	if r.doc == nil {
		return domain.DocumentInfo{}
	}
	return r.doc.info()
}

func (r *Rasterizer) SetTarget(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: target %dx%d", domain.ErrInvalidParameter, width, height)
	}
	r.width, r.height = width, height
	r.viewport = [4]int32{0, 0, int32(width), int32(height)}
	r.buffer = make([]uint32, int(width)*int(height))
	return nil
}

func (r *Rasterizer) SetViewport(x, y, width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", domain.ErrInvalidParameter, width, height)
	}
	r.viewport = [4]int32{x, y, width, height}
	return nil
}

func (r *Rasterizer) SetLayout(layout domain.Layout) error {
	r.layout = layout.Normalize()
	return nil
}

func (r *Rasterizer) SetBackground(color uint32) error {
	r.background = color
	return nil
}

func (r *Rasterizer) SetSlots(slots map[string]domain.SlotValue) error {
	if len(slots) == 0 {
		r.slots = nil
		return nil
	}
	r.slots = make(map[string]domain.SlotValue, len(slots))
	for id, v := range slots {
		r.slots[id] = v
	}
	return nil
}

// Render paints frame. Layers are painted bottom-up, so the first layer of
// the document ends on top.
func (r *Rasterizer) Render(frame float64) ([]uint32, error) {
	if r.doc == nil {
		return nil, fmt.Errorf("%w: no document loaded", domain.ErrRender)
	}
	if r.buffer == nil {
		return nil, fmt.Errorf("%w: no render target", domain.ErrRender)
	}
	if math.IsNaN(frame) || frame < 0 || frame > r.doc.Out-r.doc.In-1 {
		return nil, fmt.Errorf("%w: frame %g out of range", domain.ErrRender, frame)
	}
	r.lastFrame = frame

	vx0, vy0 := float64(r.viewport[0]), float64(r.viewport[1])
	vw, vh := float64(r.viewport[2]), float64(r.viewport[3])
	bg := rgbaToARGB(r.background)
	r.fill(vx0, vy0, vx0+vw, vy0+vh, func(uint32, float64) uint32 { return bg })

	scaledW, scaledH, shiftX, shiftY := r.layout.Transform(vw, vh, r.doc.Width, r.doc.Height)
	sx, sy := scaledW/r.doc.Width, scaledH/r.doc.Height

	for i := len(r.doc.Layers) - 1; i >= 0; i-- {
		l := r.doc.Layers[i]
		if !l.visible(frame, r.doc.In, r.doc.Out) {
			continue
		}
		b := l.bounds(frame, r.doc.In, r.doc.Out)
		x0 := vx0 + shiftX + b[0]*sx
		y0 := vy0 + shiftY + b[1]*sy
		x1 := x0 + b[2]*sx
		y1 := y0 + b[3]*sy
		// Clip to the viewport.
		x0, y0 = math.Max(x0, vx0), math.Max(y0, vy0)
		x1, y1 = math.Min(x1, vx0+vw), math.Min(y1, vy0+vh)

		alpha := r.opacity(l)
		paint := r.painter(l, x0, x1)
		r.fill(x0, y0, x1, y1, func(dst uint32, x float64) uint32 {
			return blend(dst, paint(x), alpha)
		})
	}
	return r.buffer, nil
}

// fill replaces every pixel whose center lies inside [x0,x1)x[y0,y1) with
// color(current pixel, center x).
func (r *Rasterizer) fill(x0, y0, x1, y1 float64, color func(dst uint32, x float64) uint32) {
	for py := int(math.Max(0, math.Ceil(y0-0.5))); py < int(r.height) && float64(py)+0.5 < y1; py++ {
		row := py * int(r.width)
		for px := int(math.Max(0, math.Ceil(x0-0.5))); px < int(r.width) && float64(px)+0.5 < x1; px++ {
			r.buffer[row+px] = color(r.buffer[row+px], float64(px)+0.5)
		}
	}
}

func (r *Rasterizer) opacity(l layer) float64 {
	if l.Opacity == nil {
		return 1
	}
	v := l.Opacity.Value
	if s, ok := r.slots[l.Opacity.SlotID]; ok && s.Type == domain.SlotScalar {
		v = s.Scalar
	}
	return math.Max(0, math.Min(100, v)) / 100
}

// painter resolves the layer fill. A gradient slot spreads its stops
// horizontally across the layer.
func (r *Rasterizer) painter(l layer, x0, x1 float64) func(x float64) uint32 {
	c := [4]float64{0, 0, 0, 1}
	copy(c[:], l.Fill.Color)
	if s, ok := r.slots[l.Fill.SlotID]; ok {
		switch s.Type {
		case domain.SlotColor:
			c = s.Color
		case domain.SlotGradient:
			if len(s.Stops) > 0 {
				stops := s.Stops
				return func(x float64) uint32 {
					t := 0.0
					if x1 > x0 {
						t = (x - x0) / (x1 - x0)
					}
					return packARGB(sample(stops, t))
				}
			}
		}
	}
	packed := packARGB(c)
	return func(float64) uint32 { return packed }
}

func (r *Rasterizer) LayerBounds(name string) ([4]float64, bool) {
	if r.doc == nil {
		return [4]float64{}, false
	}
	for _, l := range r.doc.Layers {
		if l.Name == name {
			return l.bounds(r.lastFrame, r.doc.In, r.doc.Out), true
		}
	}
	return [4]float64{}, false
}

// HitTest checks picture-space coordinates against the layer at the last
// rendered frame. Hidden layers never hit.
func (r *Rasterizer) HitTest(name string, x, y float64) bool {
	if r.doc == nil {
		return false
	}
	for _, l := range r.doc.Layers {
		if l.Name != name {
			continue
		}
		if !l.visible(r.lastFrame, r.doc.In, r.doc.Out) {
			return false
		}
		b := l.bounds(r.lastFrame, r.doc.In, r.doc.Out)
		return x >= b[0] && y >= b[1] && x < b[0]+b[2] && y < b[1]+b[3]
	}
	return false
}

// sample evaluates a gradient at t in [0,1].
func sample(stops []domain.GradientStop, t float64) [4]float64 {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		f := (t - a.Offset) / span
		mixed := colorful.Color{R: a.Color[0], G: a.Color[1], B: a.Color[2]}.
			BlendRgb(colorful.Color{R: b.Color[0], G: b.Color[1], B: b.Color[2]}, f)
		return [4]float64{mixed.R, mixed.G, mixed.B, a.Color[3] + (b.Color[3]-a.Color[3])*f}
	}
	return stops[len(stops)-1].Color
}

func channel(v float64) uint32 {
	return uint32(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func packARGB(c [4]float64) uint32 {
	return channel(c[3])<<24 | channel(c[0])<<16 | channel(c[1])<<8 | channel(c[2])
}

// rgbaToARGB converts a 0xRRGGBBAA config color to the buffer layout.
func rgbaToARGB(c uint32) uint32 {
	return c<<24 | c>>8
}

// blend composites src over dst with an extra opacity factor.
func blend(dst, src uint32, opacity float64) uint32 {
	a := float64(src>>24) / 255 * opacity
	if a >= 1 {
		return src
	}
	mix := func(shift uint) uint32 {
		s := float64(src >> shift & 0xff)
		d := float64(dst >> shift & 0xff)
		return uint32(math.Round(s*a+d*(1-a))) << shift
	}
	da := float64(dst>>24) / 255
	outA := uint32(math.Round((a + da*(1-a)) * 255))
	return outA<<24 | mix(16) | mix(8) | mix(0)
}
