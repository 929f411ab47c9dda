package tween

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fogleman/ease"

	"github.com/aretw0/kinema/pkg/domain"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing interface {
	Ease(t float64) float64
}

// EasingFunc adapts a plain function to Easing.
type EasingFunc func(float64) float64

func (f EasingFunc) Ease(t float64) float64 { return f(t) }

// CubicBezier is a cubic-bezier(x1, y1, x2, y2) timing curve with fixed
// end points (0,0) and (1,1).
type CubicBezier struct {
	X1, Y1, X2, Y2 float64
}

// Linear is the identity curve.
var Linear = CubicBezier{0, 0, 1, 1}

// NewCubicBezier builds a curve from its four control values.
func NewCubicBezier(points []float64) (CubicBezier, error) {
	if len(points) != 4 {
		return CubicBezier{}, fmt.Errorf("%w: easing needs 4 control values, got %d", domain.ErrInvalidParameter, len(points))
	}
	b := CubicBezier{points[0], points[1], points[2], points[3]}
	return b, b.Validate()
}

// Validate rejects curves whose time axis is not monotonic. Y values may
// overshoot; X values outside [0,1] would make time run backwards.
func (b CubicBezier) Validate() error {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: easing control values must be finite", domain.ErrInvalidParameter)
		}
	}
	if b.X1 < 0 || b.X1 > 1 || b.X2 < 0 || b.X2 > 1 {
		return fmt.Errorf("%w: easing x values must lie in [0,1], got %v and %v", domain.ErrInvalidParameter, b.X1, b.X2)
	}
	return nil
}

// Ease solves x(s) = t for the curve parameter s and returns y(s).
func (b CubicBezier) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if b.X1 == b.Y1 && b.X2 == b.Y2 {
		return t
	}
	return bezier(b.solve(t), b.Y1, b.Y2)
}

func (b CubicBezier) solve(t float64) float64 {
	s := t
	for i := 0; i < 8; i++ {
		x := bezier(s, b.X1, b.X2) - t
		if math.Abs(x) < 1e-7 {
			return s
		}
		d := bezierSlope(s, b.X1, b.X2)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= x / d
	}

	lo, hi := 0.0, 1.0
	s = t
	for i := 0; i < 64 && hi-lo > 1e-9; i++ {
		if bezier(s, b.X1, b.X2) < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

func bezier(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}

func bezierSlope(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*p1 + 6*inv*s*(p2-p1) + 3*s*s*(1-p2)
}

var presets = map[string]EasingFunc{
	"linear":        ease.Linear,
	"in-quad":       ease.InQuad,
	"out-quad":      ease.OutQuad,
	"in-out-quad":   ease.InOutQuad,
	"in-cubic":      ease.InCubic,
	"out-cubic":     ease.OutCubic,
	"in-out-cubic":  ease.InOutCubic,
	"in-quart":      ease.InQuart,
	"out-quart":     ease.OutQuart,
	"in-out-quart":  ease.InOutQuart,
	"in-quint":      ease.InQuint,
	"out-quint":     ease.OutQuint,
	"in-out-quint":  ease.InOutQuint,
	"in-sine":       ease.InSine,
	"out-sine":      ease.OutSine,
	"in-out-sine":   ease.InOutSine,
	"in-expo":       ease.InExpo,
	"out-expo":      ease.OutExpo,
	"in-out-expo":   ease.InOutExpo,
	"in-circ":       ease.InCirc,
	"out-circ":      ease.OutCirc,
	"in-out-circ":   ease.InOutCirc,
	"in-bounce":     ease.InBounce,
	"out-bounce":    ease.OutBounce,
	"in-out-bounce": ease.InOutBounce,
}

// Preset returns a named easing curve such as "in-out-quad".
func Preset(name string) (Easing, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	f, ok := presets[key]
	if !ok {
		return nil, false
	}
	return f, true
}

// Presets lists the names accepted by Preset.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse accepts either four bezier control values or a preset name.
// Empty input means linear.
func Parse(points []float64, name string) (Easing, error) {
	switch {
	case len(points) > 0:
		return NewCubicBezier(points)
	case name != "":
		if e, ok := Preset(name); ok {
			return e, nil
		}
		return nil, fmt.Errorf("%w: unknown easing %q", domain.ErrInvalidParameter, name)
	}
	return Linear, nil
}
