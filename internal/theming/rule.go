package theming

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/kinema/internal/tween"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/lucasb-eyer/go-colorful"
)

// keyframe is one decoded animated value of a slot.
type keyframe struct {
	Frame float64
	Value domain.SlotValue
	In    *domain.Tangent
	Out   *domain.Tangent
	Hold  bool
}

// rule is a slot override ready to be evaluated at any frame.
type rule struct {
	id     string
	typ    domain.SlotType
	static *domain.SlotValue
	frames []keyframe
}

type rawKeyframe struct {
	Frame      float64         `json:"frame"`
	Value      json.RawMessage `json:"value"`
	InTangent  *domain.Tangent `json:"inTangent,omitempty"`
	OutTangent *domain.Tangent `json:"outTangent,omitempty"`
	Hold       bool            `json:"hold,omitempty"`
}

func compileRule(r domain.ThemeRule) (rule, error) {
	out := rule{id: r.ID, typ: r.Type}
	hasValue := len(r.Value) > 0 && string(r.Value) != "null"
	hasFrames := len(r.Keyframes) > 0 && string(r.Keyframes) != "null"
	if hasValue == hasFrames {
		return rule{}, fmt.Errorf("%w: slot %q needs exactly one of value or keyframes", domain.ErrLoad, r.ID)
	}

	if hasValue {
		v, err := decodeValue(r.Type, r.Value)
		if err != nil {
			return rule{}, fmt.Errorf("slot %q: %w", r.ID, err)
		}
		out.static = &v
		return out, nil
	}

	var raw []rawKeyframe
	if err := json.Unmarshal(r.Keyframes, &raw); err != nil {
		return rule{}, fmt.Errorf("%w: slot %q keyframes: %v", domain.ErrLoad, r.ID, err)
	}
	if len(raw) == 0 {
		return rule{}, fmt.Errorf("%w: slot %q has no keyframes", domain.ErrLoad, r.ID)
	}
	for _, k := range raw {
		v, err := decodeValue(r.Type, k.Value)
		if err != nil {
			return rule{}, fmt.Errorf("slot %q frame %g: %w", r.ID, k.Frame, err)
		}
		out.frames = append(out.frames, keyframe{Frame: k.Frame, Value: v, In: k.InTangent, Out: k.OutTangent, Hold: k.Hold})
	}
	sort.SliceStable(out.frames, func(i, j int) bool { return out.frames[i].Frame < out.frames[j].Frame })
	return out, nil
}

// at evaluates the rule at frame. Before the first keyframe the first value
// holds; after the last the last value holds.
func (r rule) at(frame float64) domain.SlotValue {
	if r.static != nil {
		return *r.static
	}
	first, last := r.frames[0], r.frames[len(r.frames)-1]
	if frame <= first.Frame {
		return first.Value
	}
	if frame >= last.Frame {
		return last.Value
	}

	i := sort.Search(len(r.frames), func(i int) bool { return r.frames[i].Frame > frame }) - 1
	k0, k1 := r.frames[i], r.frames[i+1]
	if k0.Hold || k1.Frame == k0.Frame {
		return k0.Value
	}
	t := (frame - k0.Frame) / (k1.Frame - k0.Frame)
	if k0.Out != nil || k1.In != nil {
		t = easing(k0.Out, k1.In).Ease(t)
	}
	return lerp(k0.Value, k1.Value, t)
}

// easing builds the curve between two keyframes from their handles.
// A missing handle falls back to the linear control point.
func easing(out, in *domain.Tangent) tween.Easing {
	b := tween.CubicBezier{X1: 0, Y1: 0, X2: 1, Y2: 1}
	if out != nil {
		b.X1, b.Y1 = out.X, out.Y
	}
	if in != nil {
		b.X2, b.Y2 = in.X, in.Y
	}
	if b.Validate() != nil {
		return tween.Linear
	}
	return b
}

func lerp(a, b domain.SlotValue, t float64) domain.SlotValue {
	switch a.Type {
	case domain.SlotColor:
		return domain.SlotValue{Type: a.Type, Color: lerpColor(a.Color, b.Color, t)}
	case domain.SlotScalar:
		return domain.SlotValue{Type: a.Type, Scalar: a.Scalar + (b.Scalar-a.Scalar)*t}
	case domain.SlotGradient:
		if len(a.Stops) != len(b.Stops) {
			return a
		}
		stops := make([]domain.GradientStop, len(a.Stops))
		for i := range a.Stops {
			stops[i] = domain.GradientStop{
				Offset: a.Stops[i].Offset + (b.Stops[i].Offset-a.Stops[i].Offset)*t,
				Color:  lerpColor(a.Stops[i].Color, b.Stops[i].Color, t),
			}
		}
		return domain.SlotValue{Type: a.Type, Stops: stops}
	}
	return a
}

func lerpColor(a, b [4]float64, t float64) [4]float64 {
	ca := colorful.Color{R: a[0], G: a[1], B: a[2]}
	cb := colorful.Color{R: b[0], G: b[1], B: b[2]}
	c := ca.BlendRgb(cb, t)
	return [4]float64{c.R, c.G, c.B, a[3] + (b[3]-a[3])*t}
}

func decodeValue(t domain.SlotType, raw json.RawMessage) (domain.SlotValue, error) {
	switch t {
	case domain.SlotColor:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return domain.SlotValue{}, fmt.Errorf("%w: %v", domain.ErrLoad, err)
		}
		c, err := ParseColor(v)
		if err != nil {
			return domain.SlotValue{}, err
		}
		return domain.SlotValue{Type: t, Color: c}, nil
	case domain.SlotScalar:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return domain.SlotValue{}, fmt.Errorf("%w: scalar: %v", domain.ErrLoad, err)
		}
		return domain.SlotValue{Type: t, Scalar: f}, nil
	case domain.SlotGradient:
		var stops []struct {
			Offset float64 `json:"offset"`
			Color  any     `json:"color"`
		}
		if err := json.Unmarshal(raw, &stops); err != nil {
			return domain.SlotValue{}, fmt.Errorf("%w: gradient: %v", domain.ErrLoad, err)
		}
		out := domain.SlotValue{Type: t, Stops: make([]domain.GradientStop, 0, len(stops))}
		for _, s := range stops {
			c, err := ParseColor(s.Color)
			if err != nil {
				return domain.SlotValue{}, err
			}
			out.Stops = append(out.Stops, domain.GradientStop{Offset: s.Offset, Color: c})
		}
		return out, nil
	}
	return domain.SlotValue{}, fmt.Errorf("%w: unknown slot type %q", domain.ErrLoad, t)
}

// ParseColor accepts "#rrggbb" or 3/4 channels in [0,1]. Alpha defaults to 1.
func ParseColor(v any) ([4]float64, error) {
	switch c := v.(type) {
	case string:
		parsed, err := colorful.Hex(c)
		if err != nil {
			return [4]float64{}, fmt.Errorf("%w: color %q", domain.ErrLoad, c)
		}
		return [4]float64{parsed.R, parsed.G, parsed.B, 1}, nil
	case []any:
		if len(c) != 3 && len(c) != 4 {
			return [4]float64{}, fmt.Errorf("%w: color needs 3 or 4 channels", domain.ErrLoad)
		}
		out := [4]float64{0, 0, 0, 1}
		for i, ch := range c {
			f, ok := ch.(float64)
			if !ok {
				return [4]float64{}, fmt.Errorf("%w: color channel %d is %T", domain.ErrLoad, i, ch)
			}
			out[i] = f
		}
		return out, nil
	}
	return [4]float64{}, fmt.Errorf("%w: unsupported color %T", domain.ErrLoad, v)
}
