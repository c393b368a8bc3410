package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"pagetag/internal/geom"
	"pagetag/internal/log"
	"pagetag/internal/selection"
	"pagetag/pkg/types"
)

var (
	selectionFill = color.NRGBA{R: 33, G: 150, B: 243, A: 90}
	dragOutline   = color.NRGBA{R: 33, G: 150, B: 243, A: 160}
	searchFill    = color.NRGBA{R: 255, G: 152, B: 0, A: 110}
	viewBackdrop  = color.NRGBA{R: 24, G: 24, B: 24, A: 255}
)

// PageView renders one page: the rasterized page image framed in the
// tag color, selection highlights, the drag rubber band and search hit
// highlights. It owns the geometry mapper for the current page and
// feeds drag events into the selection engine.
type PageView struct {
	widget.BaseWidget

	renderer types.Renderer
	sel      *selection.Engine
	margin   float64

	page         int // file page, -1 when nothing is shown
	pageW, pageH float64
	mapper       *geom.Mapper

	raster           *canvas.Image
	rasterW, rasterH float64

	tagColor    color.Color
	searchRects []types.Rect // doc space, current page only
	emptyText   string

	dragging bool
	lastDrag types.Point

	// OnSelectionChanged fires after a drag or tap altered the
	// selection.
	OnSelectionChanged func()
}

// NewPageView creates an empty page view.
func NewPageView(renderer types.Renderer, sel *selection.Engine, margin float64) *PageView {
	v := &PageView{
		renderer:  renderer,
		sel:       sel,
		margin:    margin,
		page:      -1,
		emptyText: "No document loaded",
		tagColor:  color.Transparent,
	}
	v.ExtendBaseWidget(v)
	return v
}

// ShowPage switches the view to a file page with the given tag frame
// color.
func (v *PageView) ShowPage(page int, tagColor color.Color) {
	w, h, err := v.renderer.PageSize(page)
	if err != nil {
		log.Errorf("Reading size of page %d: %v", page, err)
		v.ShowEmpty("Failed to read page")
		return
	}

	v.page = page
	v.pageW, v.pageH = w, h
	v.tagColor = tagColor
	v.searchRects = nil
	v.rebuildMapper()

	words, err := v.renderer.Words(page)
	if err != nil {
		log.Warnf("Extracting words of page %d: %v", page, err)
		words = nil
	}
	v.sel.SetPage(words, v.mapper)

	v.Refresh()
}

// ShowEmpty blanks the view with a message, used for the empty-view
// state and load failures.
func (v *PageView) ShowEmpty(msg string) {
	v.page = -1
	v.emptyText = msg
	v.searchRects = nil
	v.sel.SetPage(nil, nil)
	v.Refresh()
}

// Page returns the shown file page, -1 when empty.
func (v *PageView) Page() int { return v.page }

// SetSearchRects installs the document-space search highlights for the
// shown page.
func (v *PageView) SetSearchRects(rects []types.Rect) {
	v.searchRects = rects
	v.Refresh()
}

func (v *PageView) rebuildMapper() {
	size := v.Size()
	v.mapper = geom.NewMapper(float64(size.Width), float64(size.Height), v.pageW, v.pageH, v.margin)
	v.sel.SetMapper(v.mapper)
}

// Dragged implements fyne.Draggable. The first event of a gesture
// starts the drag at the position the pointer came from.
func (v *PageView) Dragged(e *fyne.DragEvent) {
	pos := types.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)}
	if !v.dragging {
		start := types.Point{
			X: pos.X - float64(e.Dragged.DX),
			Y: pos.Y - float64(e.Dragged.DY),
		}
		v.dragging = v.sel.BeginDrag(start)
		if !v.dragging {
			return
		}
	}
	v.lastDrag = pos
	v.sel.UpdateDrag(pos)
	v.Refresh()
}

// DragEnd implements fyne.Draggable.
func (v *PageView) DragEnd() {
	if !v.dragging {
		return
	}
	v.dragging = false
	v.sel.EndDrag(v.lastDrag)
	v.Refresh()
	if v.OnSelectionChanged != nil {
		v.OnSelectionChanged()
	}
}

// Tapped clears the selection; a plain click never keeps one.
func (v *PageView) Tapped(*fyne.PointEvent) {
	if !v.sel.HasSelection() {
		return
	}
	v.sel.Clear()
	v.Refresh()
	if v.OnSelectionChanged != nil {
		v.OnSelectionChanged()
	}
}

// CreateRenderer implements fyne.Widget.
func (v *PageView) CreateRenderer() fyne.WidgetRenderer {
	r := &pageViewRenderer{
		view:       v,
		backdrop:   canvas.NewRectangle(viewBackdrop),
		frame:      canvas.NewRectangle(color.Transparent),
		emptyLabel: canvas.NewText(v.emptyText, color.White),
	}
	r.emptyLabel.Alignment = fyne.TextAlignCenter
	return r
}

type pageViewRenderer struct {
	view       *PageView
	backdrop   *canvas.Rectangle
	frame      *canvas.Rectangle
	image      *canvas.Image
	emptyLabel *canvas.Text
	overlays   []fyne.CanvasObject
}

func (r *pageViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *pageViewRenderer) Layout(size fyne.Size) {
	r.backdrop.Resize(size)
	r.view.rebuildMapper()
	r.refreshRaster()
	r.place()
}

func (r *pageViewRenderer) Refresh() {
	r.refreshRaster()
	r.place()
	canvas.Refresh(r.view)
}

// refreshRaster re-renders the page image when no raster exists yet or
// the draw size drifted past the staleness tolerance.
func (r *pageViewRenderer) refreshRaster() {
	v := r.view
	if v.page < 0 || v.mapper == nil {
		r.image = nil
		return
	}
	draw := v.mapper.DrawRect()
	if draw.IsEmpty() {
		r.image = nil
		return
	}
	if r.image != nil && !v.mapper.RasterStale(v.rasterW, v.rasterH) {
		return
	}

	img, err := v.renderer.Render(v.page, draw.Width(), draw.Height())
	if err != nil {
		log.Errorf("Rendering page %d: %v", v.page, err)
		r.image = nil
		return
	}
	v.rasterW, v.rasterH = draw.Width(), draw.Height()
	r.image = canvas.NewImageFromImage(img)
	r.image.FillMode = canvas.ImageFillStretch
}

// place positions every object from the current mapper state and
// rebuilds the highlight overlays.
func (r *pageViewRenderer) place() {
	v := r.view
	r.overlays = r.overlays[:0]

	if v.page < 0 || v.mapper == nil {
		r.emptyLabel.Text = v.emptyText
		r.emptyLabel.Show()
		size := v.Size()
		r.emptyLabel.Resize(size)
		r.emptyLabel.Move(fyne.NewPos(0, size.Height/2-10))
		return
	}
	r.emptyLabel.Hide()

	draw := v.mapper.DrawRect()
	moveTo := func(obj fyne.CanvasObject, rect types.Rect) {
		obj.Move(fyne.NewPos(float32(rect.X0), float32(rect.Y0)))
		obj.Resize(fyne.NewSize(float32(rect.Width()), float32(rect.Height())))
	}

	// Tag frame sits just outside the page.
	frameRect := types.NewRect(draw.X0-3, draw.Y0-3, draw.X1+3, draw.Y1+3)
	r.frame.FillColor = color.Transparent
	r.frame.StrokeColor = v.tagColor
	r.frame.StrokeWidth = 3
	moveTo(r.frame, frameRect)

	if r.image != nil {
		moveTo(r.image, draw)
	}

	for _, rect := range v.sel.WidgetRects() {
		h := canvas.NewRectangle(selectionFill)
		moveTo(h, rect)
		r.overlays = append(r.overlays, h)
	}

	for _, docRect := range v.searchRects {
		h := canvas.NewRectangle(searchFill)
		moveTo(h, v.mapper.DocToWidget(docRect))
		r.overlays = append(r.overlays, h)
	}

	if dragRect, ok := v.sel.DragRect(); ok {
		band := canvas.NewRectangle(color.Transparent)
		band.StrokeColor = dragOutline
		band.StrokeWidth = 1
		moveTo(band, dragRect)
		r.overlays = append(r.overlays, band)
	}
}

func (r *pageViewRenderer) Objects() []fyne.CanvasObject {
	objects := []fyne.CanvasObject{r.backdrop}
	if r.image != nil {
		objects = append(objects, r.image)
	}
	objects = append(objects, r.frame)
	objects = append(objects, r.overlays...)
	objects = append(objects, r.emptyLabel)
	return objects
}

func (r *pageViewRenderer) Destroy() {}
