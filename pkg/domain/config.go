package domain

import (
	"fmt"
	"math"
	"strings"
)

// Mode defines the direction in which playback walks the active segment.
type Mode int

const (
	ModeForward Mode = iota + 1
	ModeReverse
	ModeBounce
	ModeReverseBounce
)

var modeNames = map[Mode]string{
	ModeForward:       "Forward",
	ModeReverse:       "Reverse",
	ModeBounce:        "Bounce",
	ModeReverseBounce: "ReverseBounce",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the four declared modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// StartsReversed reports whether playback begins at the segment end.
func (m Mode) StartsReversed() bool {
	return m == ModeReverse || m == ModeReverseBounce
}

// ParseMode accepts the names used in state machine definitions ("Forward",
// "reverse-bounce", ...). Matching is case and separator insensitive.
func ParseMode(s string) (Mode, error) {
	key := normalizeEnum(s)
	for m, name := range modeNames {
		if normalizeEnum(name) == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// Fit defines how the animation is scaled into the render target.
type Fit int

const (
	FitContain Fit = iota + 1
	FitFill
	FitCover
	FitWidth
	FitHeight
	FitNone
)

var fitNames = map[Fit]string{
	FitContain: "Contain",
	FitFill:    "Fill",
	FitCover:   "Cover",
	FitWidth:   "FitWidth",
	FitHeight:  "FitHeight",
	FitNone:    "None",
}

func (f Fit) String() string {
	if name, ok := fitNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// Valid reports whether f is one of the six declared fits.
func (f Fit) Valid() bool {
	_, ok := fitNames[f]
	return ok
}

// ParseFit is the Fit counterpart of ParseMode.
func ParseFit(s string) (Fit, error) {
	key := normalizeEnum(s)
	for f, name := range fitNames {
		if normalizeEnum(name) == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown fit %q", ErrInvalidParameter, s)
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// Layout positions the animation inside the render target.
type Layout struct {
	Fit   Fit        `json:"fit" yaml:"fit" mapstructure:"fit"`
	Align [2]float64 `json:"align" yaml:"align" mapstructure:"align"`
}

// DefaultLayout centers the animation and scales it to fit.
func DefaultLayout() Layout {
	return Layout{Fit: FitContain, Align: [2]float64{0.5, 0.5}}
}

// Normalize clamps the alignment into [0,1] and replaces an unknown fit
// with Contain.
func (l Layout) Normalize() Layout {
	if !l.Fit.Valid() {
		l.Fit = FitContain
	}
	for i := range l.Align {
		l.Align[i] = math.Max(0, math.Min(1, l.Align[i]))
	}
	return l
}

// Transform computes the scaled picture size and its offset inside the
// canvas.
func (l Layout) Transform(canvasW, canvasH, pictureW, pictureH float64) (scaledW, scaledH, shiftX, shiftY float64) {
	l = l.Normalize()
	scaleX, scaleY := 1.0, 1.0
	if pictureW > 0 && pictureH > 0 {
		switch l.Fit {
		case FitContain:
			s := math.Min(canvasW/pictureW, canvasH/pictureH)
			scaleX, scaleY = s, s
		case FitFill:
			scaleX, scaleY = canvasW/pictureW, canvasH/pictureH
		case FitCover:
			s := math.Max(canvasW/pictureW, canvasH/pictureH)
			scaleX, scaleY = s, s
		case FitWidth:
			scaleX = canvasW / pictureW
			scaleY = scaleX
		case FitHeight:
			scaleY = canvasH / pictureH
			scaleX = scaleY
		}
	}

	scaledW = pictureW * scaleX
	scaledH = pictureH * scaleY
	shiftX = (canvasW - scaledW) * l.Align[0]
	shiftY = (canvasH - scaledH) * l.Align[1]
	return scaledW, scaledH, shiftX, shiftY
}

// ToPicture maps a canvas pixel coordinate into picture space. It returns
// false when the canvas or picture has no area.
func (l Layout) ToPicture(x, y, canvasW, canvasH, pictureW, pictureH float64) (float64, float64, bool) {
	scaledW, scaledH, shiftX, shiftY := l.Transform(canvasW, canvasH, pictureW, pictureH)
	if scaledW == 0 || scaledH == 0 {
		return 0, 0, false
	}
	return (x - shiftX) * pictureW / scaledW, (y - shiftY) * pictureH / scaledH, true
}

// Config is the playback configuration. It is a value type: SetConfig swaps
// the whole snapshot.
type Config struct {
	Mode                  Mode      `json:"mode" yaml:"mode" mapstructure:"mode"`
	Loop                  bool      `json:"loop" yaml:"loop" mapstructure:"loop"`
	LoopCount             uint32    `json:"loop_count,omitempty" yaml:"loop_count,omitempty" mapstructure:"loop_count"`
	Speed                 float64   `json:"speed" yaml:"speed" mapstructure:"speed"`
	UseFrameInterpolation bool      `json:"use_frame_interpolation" yaml:"use_frame_interpolation" mapstructure:"use_frame_interpolation"`
	Autoplay              bool      `json:"autoplay" yaml:"autoplay" mapstructure:"autoplay"`
	Segment               []float64 `json:"segment,omitempty" yaml:"segment,omitempty" mapstructure:"segment"`
	BackgroundColor       uint32    `json:"background_color" yaml:"background_color" mapstructure:"background_color"`
	Layout                Layout    `json:"layout" yaml:"layout" mapstructure:"layout"`
	Marker                string    `json:"marker,omitempty" yaml:"marker,omitempty" mapstructure:"marker"`
	ThemeID               string    `json:"theme_id,omitempty" yaml:"theme_id,omitempty" mapstructure:"theme_id"`
	StateMachineID        string    `json:"state_machine_id,omitempty" yaml:"state_machine_id,omitempty" mapstructure:"state_machine_id"`
	AnimationID           string    `json:"animation_id,omitempty" yaml:"animation_id,omitempty" mapstructure:"animation_id"`
}

// DefaultConfig returns the configuration a new player starts with.
func DefaultConfig() Config {
	return Config{
		Mode:                  ModeForward,
		Speed:                 1,
		UseFrameInterpolation: true,
		Layout:                DefaultLayout(),
	}
}

// HasSegment reports whether an explicit [start,end] range is set.
func (c Config) HasSegment() bool {
	return len(c.Segment) == 2
}

// Validate rejects configurations the player cannot honour.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidParameter, c.Mode)
	}
	if math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) || c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be a positive finite number, got %v", ErrInvalidParameter, c.Speed)
	}
	if !c.Layout.Fit.Valid() {
		return fmt.Errorf("%w: fit %d", ErrInvalidParameter, c.Layout.Fit)
	}
	switch len(c.Segment) {
	case 0:
	case 2:
		start, end := c.Segment[0], c.Segment[1]
		if !finite(start) || !finite(end) || start < 0 || start >= end {
			return fmt.Errorf("%w: segment [%v, %v]", ErrInvalidParameter, start, end)
		}
	default:
		return fmt.Errorf("%w: segment needs exactly 2 values, got %d", ErrInvalidParameter, len(c.Segment))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
