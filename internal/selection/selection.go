// Package selection implements rectangular text selection on a rendered
// page: a drag state machine in widget space, word hit-testing in
// document space, and plain-text reconstruction of the selected words.
package selection

import (
	"math"
	"sort"
	"strings"

	"pagetag/internal/geom"
	"pagetag/pkg/types"
)

const (
	// DefaultClickThreshold is the drag extent, in widget pixels, below
	// which releasing the button counts as a click and clears the
	// selection instead of keeping it.
	DefaultClickThreshold = 3.0

	// LineTolerance is the vertical distance, in document points, within
	// which two words are treated as sitting on the same text line.
	LineTolerance = 5.0
)

// State is the drag phase of the engine.
type State int

const (
	Idle State = iota
	Dragging
)

// Engine tracks the selection on the current page. Words and the
// geometry mapper are swapped wholesale on page change or resize. Not
// safe for concurrent use.
type Engine struct {
	words          []types.WordBox
	mapper         *geom.Mapper
	clickThreshold float64

	state    State
	origin   types.Point
	dragRect types.Rect
	selected []int // indices into words, ascending
}

// NewEngine returns an idle engine. A zero clickThreshold gets the
// default.
func NewEngine(clickThreshold float64) *Engine {
	if clickThreshold <= 0 {
		clickThreshold = DefaultClickThreshold
	}
	return &Engine{clickThreshold: clickThreshold}
}

// State returns the current drag phase.
func (e *Engine) State() State { return e.state }

// SetPage installs the word boxes of a newly displayed page and drops
// any selection in progress.
func (e *Engine) SetPage(words []types.WordBox, mapper *geom.Mapper) {
	e.words = words
	e.mapper = mapper
	e.Clear()
}

// SetMapper replaces the geometry mapper after a container resize. The
// selection survives; widget rectangles are derived on demand.
func (e *Engine) SetMapper(mapper *geom.Mapper) {
	e.mapper = mapper
	if e.state == Dragging {
		// A resize mid-drag invalidates the widget-space origin.
		e.CancelDrag()
	}
}

// Clear drops the selection and any drag in progress.
func (e *Engine) Clear() {
	e.state = Idle
	e.selected = nil
	e.dragRect = types.Rect{}
}

// HasSelection reports whether any words are selected.
func (e *Engine) HasSelection() bool { return len(e.selected) > 0 }

// BeginDrag starts a drag at a widget-space point. Presses outside the
// page draw area are ignored and clear the selection.
func (e *Engine) BeginDrag(p types.Point) bool {
	if e.mapper == nil || !e.mapper.ContainsWidgetPoint(p) {
		e.Clear()
		return false
	}
	e.state = Dragging
	e.origin = p
	e.dragRect = types.NewRect(p.X, p.Y, p.X, p.Y)
	e.selected = nil
	return true
}

// UpdateDrag extends the drag to a new pointer position and recomputes
// the set of intersected words.
func (e *Engine) UpdateDrag(p types.Point) {
	if e.state != Dragging {
		return
	}
	e.dragRect = types.NewRect(e.origin.X, e.origin.Y, p.X, p.Y).Normalized()
	e.recomputeSelected()
}

// EndDrag finishes the drag. A release within the click threshold in
// both dimensions is a click: it clears the selection and returns
// false. Otherwise the selection is kept.
func (e *Engine) EndDrag(p types.Point) bool {
	if e.state != Dragging {
		return false
	}
	e.state = Idle

	if math.Abs(p.X-e.origin.X) < e.clickThreshold &&
		math.Abs(p.Y-e.origin.Y) < e.clickThreshold {
		e.Clear()
		return false
	}

	e.dragRect = types.NewRect(e.origin.X, e.origin.Y, p.X, p.Y).Normalized()
	e.recomputeSelected()
	return len(e.selected) > 0
}

// CancelDrag aborts a drag without keeping its words.
func (e *Engine) CancelDrag() {
	if e.state == Dragging {
		e.Clear()
	}
}

// SelectAll selects every word on the page.
func (e *Engine) SelectAll() {
	e.state = Idle
	e.selected = make([]int, len(e.words))
	for i := range e.words {
		e.selected[i] = i
	}
}

// DragRect returns the rubber-band rectangle in widget space while a
// drag is active.
func (e *Engine) DragRect() (types.Rect, bool) {
	if e.state != Dragging {
		return types.Rect{}, false
	}
	return e.dragRect, true
}

// SelectedWords returns the selected word boxes in document space.
func (e *Engine) SelectedWords() []types.WordBox {
	out := make([]types.WordBox, 0, len(e.selected))
	for _, i := range e.selected {
		out = append(out, e.words[i])
	}
	return out
}

// WidgetRects returns the widget-space rectangles of the selected
// words, for painting highlights.
func (e *Engine) WidgetRects() []types.Rect {
	if e.mapper == nil {
		return nil
	}
	out := make([]types.Rect, 0, len(e.selected))
	for _, i := range e.selected {
		out = append(out, e.mapper.DocToWidget(e.words[i].Rect))
	}
	return out
}

// Text reconstructs the selected words as plain text: reading order is
// top to bottom then left to right, words on a line joined by spaces,
// lines separated by newlines. Words within LineTolerance vertically
// share a line.
func (e *Engine) Text() string {
	words := e.SelectedWords()
	if len(words) == 0 {
		return ""
	}

	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Rect.Y0 != words[j].Rect.Y0 {
			return words[i].Rect.Y0 < words[j].Rect.Y0
		}
		return words[i].Rect.X0 < words[j].Rect.X0
	})

	// Breaks compare each word to the one before it, so a slow
	// vertical drift within tolerance stays on one line.
	var b strings.Builder
	prevY := words[0].Rect.Y0
	for i, w := range words {
		if i > 0 {
			if math.Abs(w.Rect.Y0-prevY) > LineTolerance {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		prevY = w.Rect.Y0
		b.WriteString(w.Text)
	}
	return b.String()
}

// recomputeSelected maps the widget drag rectangle into document space
// and collects the indices of intersecting words.
func (e *Engine) recomputeSelected() {
	e.selected = e.selected[:0]
	docRect, ok := e.mapper.WidgetToDoc(e.dragRect)
	if !ok {
		return
	}
	for i, w := range e.words {
		if w.Rect.Intersects(docRect) {
			e.selected = append(e.selected, i)
		}
	}
}
