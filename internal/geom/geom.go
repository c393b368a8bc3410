// Package geom maps between widget pixel space and document point space
// for a single displayed page. All conversions derive from one scalar
// zoom factor and the rectangle the page is drawn into.
package geom

import (
	"math"

	"pagetag/pkg/types"
)

// RasterTolerance is the size slack, in pixels, below which a cached
// raster is still considered valid. Sub-pixel layout rounding would
// otherwise re-render on every paint.
const RasterTolerance = 1.0

// Mapper converts rectangles between widget space and document space.
// It is rebuilt whenever the container resizes or the page changes.
type Mapper struct {
	containerW float64
	containerH float64
	pageW      float64
	pageH      float64
	margin     float64
}

// NewMapper returns a mapper for a page of pageW×pageH points drawn
// inside a containerW×containerH pixel area with the given margin.
func NewMapper(containerW, containerH, pageW, pageH, margin float64) *Mapper {
	if pageW <= 0 {
		pageW = 1
	}
	if pageH <= 0 {
		pageH = 1
	}
	return &Mapper{
		containerW: containerW,
		containerH: containerH,
		pageW:      pageW,
		pageH:      pageH,
		margin:     margin,
	}
}

// PageSize returns the page dimensions in points.
func (m *Mapper) PageSize() (w, h float64) { return m.pageW, m.pageH }

// DrawRect returns the widget-space rectangle the page is drawn into:
// fit to the margin-adjusted container preserving aspect ratio and
// centered along the slack axis.
func (m *Mapper) DrawRect() types.Rect {
	availW := m.containerW - 2*m.margin
	availH := m.containerH - 2*m.margin
	if availW <= 0 || availH <= 0 {
		return types.Rect{}
	}

	pageAspect := m.pageW / math.Max(1, m.pageH)
	boxAspect := availW / math.Max(1, availH)

	var x, y, w, h float64
	if pageAspect > boxAspect {
		// Fit to width, center vertically.
		w = availW
		h = w / pageAspect
		x = m.margin
		y = m.margin + (availH-h)/2
	} else {
		// Fit to height, center horizontally.
		h = availH
		w = h * pageAspect
		x = m.margin + (availW-w)/2
		y = m.margin
	}
	return types.NewRect(x, y, x+w, y+h)
}

// Zoom returns the document-point to widget-pixel scale factor.
func (m *Mapper) Zoom() float64 {
	draw := m.DrawRect()
	if draw.IsEmpty() {
		return 1
	}
	return math.Min(draw.Width()/m.pageW, draw.Height()/m.pageH)
}

// DocToWidget converts a document-space rectangle to widget space.
func (m *Mapper) DocToWidget(r types.Rect) types.Rect {
	draw := m.DrawRect()
	zoom := m.Zoom()
	return types.NewRect(
		draw.X0+r.X0*zoom,
		draw.Y0+r.Y0*zoom,
		draw.X0+r.X1*zoom,
		draw.Y0+r.Y1*zoom,
	)
}

// WidgetToDoc converts a widget-space rectangle to document space. The
// input is first intersected with the page draw rectangle; a rectangle
// entirely outside the rendered page maps to nothing.
func (m *Mapper) WidgetToDoc(r types.Rect) (types.Rect, bool) {
	draw := m.DrawRect()
	inter, ok := r.Normalized().Intersect(draw)
	if !ok {
		return types.Rect{}, false
	}
	zoom := m.Zoom()
	if zoom <= 0 {
		return types.Rect{}, false
	}
	return types.NewRect(
		(inter.X0-draw.X0)/zoom,
		(inter.Y0-draw.Y0)/zoom,
		(inter.X1-draw.X0)/zoom,
		(inter.Y1-draw.Y0)/zoom,
	), true
}

// ContainsWidgetPoint reports whether a widget-space point falls inside
// the page draw rectangle. Drag gestures may only start inside it.
func (m *Mapper) ContainsWidgetPoint(p types.Point) bool {
	return m.DrawRect().Contains(p)
}

// RasterStale reports whether a cached raster of the given pixel size no
// longer matches the current draw rectangle, beyond RasterTolerance.
func (m *Mapper) RasterStale(rasterW, rasterH float64) bool {
	draw := m.DrawRect()
	return math.Abs(rasterW-draw.Width()) > RasterTolerance ||
		math.Abs(rasterH-draw.Height()) > RasterTolerance
}
