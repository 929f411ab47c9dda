package ports

import "github.com/aretw0/kinema/pkg/domain"

// Rasterizer paints animation frames. It is driven by a single player and
// need not be safe for concurrent use.
type Rasterizer interface {
	// Load parses an animation document. The previous document is dropped.
	Load(data []byte) error

	// Info describes the loaded document.
	Info() domain.DocumentInfo

	// SetTarget sizes the pixel buffer returned by Render.
	SetTarget(width, height uint32) error

	// SetViewport restricts painting to a sub-rectangle of the target.
	SetViewport(x, y, width, height int32) error

	SetLayout(layout domain.Layout) error

	// SetBackground sets the 0xRRGGBBAA clear color.
	SetBackground(color uint32) error

	// SetSlots replaces every slot override. A nil map clears them.
	// Ids the document does not declare are ignored.
	SetSlots(slots map[string]domain.SlotValue) error

	// Render paints frame into the target buffer (row-major, one
	// 0xAARRGGBB word per pixel) and returns it.
	Render(frame float64) ([]uint32, error)

	// LayerBounds returns x, y, width and height of a layer in picture
	// space for the last rendered frame.
	LayerBounds(name string) ([4]float64, bool)

	// HitTest reports whether picture point (x, y) lies inside layer name.
	HitTest(name string, x, y float64) bool
}
