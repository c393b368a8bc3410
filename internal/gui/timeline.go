package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const timelineHeight = 24

// Timeline is the clickable strip under the page view: one colored
// segment per file page, with a marker on the current one. Tapping a
// segment reports its index; the owner decides where to navigate.
type Timeline struct {
	widget.BaseWidget

	colors  []color.Color
	current int

	// OnSelect receives the tapped segment index.
	OnSelect func(index int)
	// OnHover receives the hovered segment index, or -1 when the
	// pointer leaves the strip.
	OnHover func(index int)
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	t := &Timeline{current: -1}
	t.ExtendBaseWidget(t)
	return t
}

// SetSegments replaces the segment colors and the current marker
// position. current may be -1 for the empty view.
func (t *Timeline) SetSegments(colors []color.Color, current int) {
	t.colors = colors
	t.current = current
	t.Refresh()
}

// indexAt maps an X position to a segment index, or -1 when the strip
// is empty.
func (t *Timeline) indexAt(x float32) int {
	if len(t.colors) == 0 {
		return -1
	}
	segW := t.Size().Width / float32(len(t.colors))
	if segW <= 0 {
		return -1
	}
	idx := int(x / segW)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(t.colors) {
		idx = len(t.colors) - 1
	}
	return idx
}

// Tapped implements fyne.Tappable.
func (t *Timeline) Tapped(e *fyne.PointEvent) {
	if t.OnSelect == nil {
		return
	}
	if idx := t.indexAt(e.Position.X); idx >= 0 {
		t.OnSelect(idx)
	}
}

// MouseIn implements desktop.Hoverable.
func (t *Timeline) MouseIn(e *desktop.MouseEvent) {
	t.MouseMoved(e)
}

// MouseMoved implements desktop.Hoverable.
func (t *Timeline) MouseMoved(e *desktop.MouseEvent) {
	if t.OnHover != nil {
		t.OnHover(t.indexAt(e.Position.X))
	}
}

// MouseOut implements desktop.Hoverable.
func (t *Timeline) MouseOut() {
	if t.OnHover != nil {
		t.OnHover(-1)
	}
}

// CreateRenderer implements fyne.Widget.
func (t *Timeline) CreateRenderer() fyne.WidgetRenderer {
	return &timelineRenderer{
		timeline: t,
		backdrop: canvas.NewRectangle(viewBackdrop),
		marker:   canvas.NewRectangle(color.Transparent),
	}
}

type timelineRenderer struct {
	timeline *Timeline
	backdrop *canvas.Rectangle
	marker   *canvas.Rectangle
	segments []fyne.CanvasObject
}

func (r *timelineRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, timelineHeight)
}

func (r *timelineRenderer) Layout(size fyne.Size) {
	r.backdrop.Resize(size)
	r.rebuild(size)
}

func (r *timelineRenderer) Refresh() {
	r.rebuild(r.timeline.Size())
	canvas.Refresh(r.timeline)
}

func (r *timelineRenderer) rebuild(size fyne.Size) {
	t := r.timeline
	r.segments = r.segments[:0]

	if len(t.colors) == 0 {
		r.marker.Hide()
		return
	}

	segW := size.Width / float32(len(t.colors))
	for i, c := range t.colors {
		seg := canvas.NewRectangle(c)
		seg.Move(fyne.NewPos(float32(i)*segW+1, 2))
		seg.Resize(fyne.NewSize(segW-2, size.Height-4))
		r.segments = append(r.segments, seg)
	}

	if t.current >= 0 && t.current < len(t.colors) {
		r.marker.Show()
		r.marker.FillColor = color.Transparent
		r.marker.StrokeColor = color.White
		r.marker.StrokeWidth = 2
		r.marker.Move(fyne.NewPos(float32(t.current)*segW, 0))
		r.marker.Resize(fyne.NewSize(segW, size.Height))
	} else {
		r.marker.Hide()
	}
}

func (r *timelineRenderer) Objects() []fyne.CanvasObject {
	objects := []fyne.CanvasObject{r.backdrop}
	objects = append(objects, r.segments...)
	objects = append(objects, r.marker)
	return objects
}

func (r *timelineRenderer) Destroy() {}
