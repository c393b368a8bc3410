// Package gui is the Fyne desktop front end: page view with text
// selection, tag shortcuts, filter checkboxes, search and export.
package gui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pagetag/internal/config"
	"pagetag/internal/export"
	"pagetag/internal/log"
	"pagetag/internal/nav"
	"pagetag/internal/pdf"
	"pagetag/internal/search"
	"pagetag/internal/selection"
	"pagetag/internal/tags"
	"pagetag/internal/watch"
	"pagetag/pkg/types"
)

// App is the GUI application.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config

	doc          *pdf.Document
	navEngine    *nav.Engine
	searchEngine *search.Engine
	selEngine    *selection.Engine
	exporter     types.Exporter
	watcher      *watch.Watcher

	pageView     *PageView
	timeline     *Timeline
	pageList     *widget.List
	statusLabel  *widget.Label
	countsLabel  *widget.Label
	searchLabel  *widget.Label
	hoverLabel   *widget.Label
	searchEntry  *widget.Entry
	filterChecks map[types.Tag]*widget.Check

	// checkedPages holds file pages ticked in the sidebar; tag keys
	// apply to them in bulk instead of the current page.
	checkedPages map[int]bool
	// thumbCache keeps rendered sidebar thumbnails per file page,
	// dropped when a new document opens.
	thumbCache map[int]image.Image
}

// NewApp creates the GUI application. Open a document with OpenFile
// before Run.
func NewApp(cfg *config.Config) *App {
	a := &App{
		fyneApp:      app.NewWithID("io.github.pagetag"),
		cfg:          cfg,
		exporter:     export.NewPDFExporter(),
		filterChecks: make(map[types.Tag]*widget.Check),
		checkedPages: make(map[int]bool),
		thumbCache:   make(map[int]image.Image),
	}
	a.mainWindow = a.fyneApp.NewWindow("PageTag")
	a.selEngine = selection.NewEngine(cfg.Viewer.ClickThreshold)
	return a
}

// GetMainWindow returns the main window instance.
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// OpenFile loads a PDF and its tag sidecar and wires the engines.
func (a *App) OpenFile(path string) error {
	doc, err := pdf.Open(path)
	if err != nil {
		return err
	}

	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}

	a.doc = doc
	a.thumbCache = make(map[int]image.Image)
	store := tags.NewSidecarStore(tags.SidecarPath(path, a.cfg.Tags.SidecarSuffix))
	adapter := tags.NewAdapter(store, doc.PageCount())
	a.navEngine = nav.NewEngine(doc.PageCount(), adapter)
	a.searchEngine = search.NewEngine(doc)
	a.navEngine.OnViewChanged(a.searchEngine.Invalidate)

	if a.cfg.Watch.Enabled {
		a.startSidecarWatch(store.Path(), adapter)
	}

	a.mainWindow.SetTitle("PageTag: " + path)
	log.LogWithFields(log.F("file", path, "pages", doc.PageCount()), "Opened document")

	if a.pageView != nil {
		a.refresh()
	}
	return nil
}

// startSidecarWatch reloads tags whenever another process rewrites the
// sidecar.
func (a *App) startSidecarWatch(sidecarPath string, adapter *tags.Adapter) {
	w, err := watch.New(sidecarPath)
	if err != nil {
		log.Warnf("Sidecar watch disabled: %v", err)
		return
	}
	if err := w.Start(); err != nil {
		log.Warnf("Sidecar watch disabled: %v", err)
		return
	}
	a.watcher = w

	engine := a.navEngine
	go func() {
		for change := range w.Changes() {
			if change.Removed {
				continue
			}
			m, err := adapter.Load()
			if err != nil {
				log.Warnf("Reloading sidecar: %v", err)
				continue
			}
			engine.ReplaceTags(m)
			log.Debugf("Tags reloaded from %s", change.Path)
			a.refresh()
		}
	}()
}

// Run shows the main window and enters the event loop.
func (a *App) Run() {
	a.setupMainWindow()
	a.refresh()
	a.mainWindow.Show()
	a.fyneApp.Run()
}

func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(1000, 800))

	a.pageView = NewPageView(a.docRenderer(), a.selEngine, a.cfg.Viewer.Margin)
	a.timeline = NewTimeline()
	a.timeline.OnSelect = func(page int) {
		if a.navEngine != nil && a.navEngine.GoToFilePage(page) {
			a.refresh()
		}
	}

	a.timeline.OnHover = func(page int) {
		if a.navEngine == nil || page < 0 || page >= a.navEngine.TotalPages() {
			a.hoverLabel.SetText("")
			return
		}
		a.hoverLabel.SetText(fmt.Sprintf("page %d (%s)", page+1, a.navEngine.TagOf(page)))
	}

	a.statusLabel = widget.NewLabel("")
	a.countsLabel = widget.NewLabel("")
	a.searchLabel = widget.NewLabel("")
	a.hoverLabel = widget.NewLabel("")

	a.searchEntry = widget.NewEntry()
	a.searchEntry.SetPlaceHolder("Search text...")
	a.searchEntry.OnSubmitted = func(string) { a.runSearch() }

	searchRow := container.NewBorder(nil, nil,
		widget.NewIcon(theme.SearchIcon()),
		container.NewHBox(
			widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() { a.stepSearch(false) }),
			widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() { a.stepSearch(true) }),
			a.searchLabel,
		),
		a.searchEntry,
	)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.showOpenDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.exportFiltered),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), a.copySelection),
		widget.NewToolbarAction(theme.FileTextIcon(), a.copyPageText),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), func() {
			dialog.ShowInformation("About PageTag",
				"Tag PDF pages green, yellow or red with keys 1-4,\n"+
					"filter the view by tag, select and copy text,\n"+
					"and export the filtered pages to a new PDF.",
				a.mainWindow)
		}),
	)

	content := container.NewBorder(
		container.NewVBox(toolbar, searchRow, a.createFilterRow()),
		container.NewVBox(a.timeline, a.createStatusBar()),
		a.createSidebar(),
		nil,
		a.pageView,
	)
	a.mainWindow.SetContent(content)

	a.pageView.OnSelectionChanged = func() {
		a.updateStatus()
	}

	a.bindKeys()
}

func (a *App) createFilterRow() fyne.CanvasObject {
	row := container.NewHBox(widget.NewLabel("Show:"))
	for _, tag := range types.AllTags {
		tag := tag
		check := widget.NewCheck(tag.String(), func(bool) { a.applyFilters() })
		check.SetChecked(true)
		a.filterChecks[tag] = check
		row.Add(check)
	}
	return row
}

// Sidebar thumbnail raster size in pixels, portrait page proportions.
const (
	thumbWidth  = 40
	thumbHeight = 56
)

// renderThumbnail rasterizes a small page preview for a sidebar row.
func renderThumbnail(r types.Renderer, page int) image.Image {
	img, err := r.Render(page, thumbWidth, thumbHeight)
	if err != nil {
		log.Debugf("Thumbnail for page %d: %v", page+1, err)
		return nil
	}
	return img
}

func (a *App) pageThumbnail(page int) image.Image {
	if img, ok := a.thumbCache[page]; ok {
		return img
	}
	img := renderThumbnail(a.docRenderer(), page)
	if img != nil {
		a.thumbCache[page] = img
	}
	return img
}

// createSidebar builds the page list: one row per visible page with a
// checkbox for bulk tagging and a page thumbnail. Tag keys apply to
// the checked pages when any are ticked.
func (a *App) createSidebar() fyne.CanvasObject {
	a.pageList = widget.NewList(
		func() int {
			if a.navEngine == nil {
				return 0
			}
			return a.navEngine.VisibleCount()
		},
		func() fyne.CanvasObject {
			thumb := canvas.NewImageFromImage(nil)
			thumb.FillMode = canvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(thumbWidth, thumbHeight))
			return container.NewHBox(widget.NewCheck("", nil), thumb, widget.NewLabel("Page 0000"))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if a.navEngine == nil {
				return
			}
			visible := a.navEngine.VisiblePages()
			if id < 0 || id >= len(visible) {
				return
			}
			page := visible[id]

			row := item.(*fyne.Container)
			check := row.Objects[0].(*widget.Check)
			thumb := row.Objects[1].(*canvas.Image)
			label := row.Objects[2].(*widget.Label)

			thumb.Image = a.pageThumbnail(page)
			thumb.Refresh()

			check.OnChanged = nil
			check.SetChecked(a.checkedPages[page])
			check.OnChanged = func(on bool) {
				if on {
					a.checkedPages[page] = true
				} else {
					delete(a.checkedPages, page)
				}
			}

			text := fmt.Sprintf("Page %d", page+1)
			if tag := a.navEngine.TagOf(page); tag != types.TagNone {
				text += "  " + tag.String()
			}
			label.SetText(text)
		},
	)
	a.pageList.OnSelected = func(id widget.ListItemID) {
		if a.navEngine != nil && a.navEngine.GoToVisibleIndex(id) {
			a.refresh()
		}
	}
	return a.pageList
}

func (a *App) createStatusBar() fyne.CanvasObject {
	return container.NewHBox(a.statusLabel, a.hoverLabel, layout.NewSpacer(), a.countsLabel)
}

// bindKeys wires the keyboard: 1-4 tag and advance, arrows navigate,
// Ctrl+F focuses search, Ctrl+A selects all, Ctrl+C copies, Ctrl+S
// exports.
func (a *App) bindKeys() {
	canvas := a.mainWindow.Canvas()

	canvas.SetOnTypedRune(func(r rune) {
		switch r {
		case '1':
			a.tagPages(types.TagGreen)
		case '2':
			a.tagPages(types.TagYellow)
		case '3':
			a.tagPages(types.TagRed)
		case '4':
			a.tagPages(types.TagNone)
		}
	})

	canvas.SetOnTypedKey(func(e *fyne.KeyEvent) {
		if a.navEngine == nil {
			return
		}
		switch e.Name {
		case fyne.KeyRight, fyne.KeyDown, fyne.KeyPageDown, fyne.KeySpace:
			if a.navEngine.Next() {
				a.refresh()
			}
		case fyne.KeyLeft, fyne.KeyUp, fyne.KeyPageUp:
			if a.navEngine.Prev() {
				a.refresh()
			}
		case fyne.KeyHome:
			if a.navEngine.GoToVisibleIndex(0) {
				a.refresh()
			}
		case fyne.KeyEnd:
			if a.navEngine.GoToVisibleIndex(a.navEngine.VisibleCount() - 1) {
				a.refresh()
			}
		case fyne.KeyEscape:
			a.selEngine.Clear()
			a.refresh()
		}
	})

	ctrl := func(key fyne.KeyName) *desktop.CustomShortcut {
		return &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierControl}
	}
	canvas.AddShortcut(ctrl(fyne.KeyF), func(fyne.Shortcut) {
		canvas.Focus(a.searchEntry)
	})
	canvas.AddShortcut(ctrl(fyne.KeyA), func(fyne.Shortcut) {
		a.selEngine.SelectAll()
		a.refresh()
	})
	canvas.AddShortcut(ctrl(fyne.KeyC), func(fyne.Shortcut) {
		a.copySelection()
	})
	canvas.AddShortcut(ctrl(fyne.KeyS), func(fyne.Shortcut) {
		a.exportFiltered()
	})
}

// tagPages routes a tag key: bulk when sidebar pages are checked,
// otherwise tag the current page and advance.
func (a *App) tagPages(tag types.Tag) {
	if a.navEngine == nil {
		return
	}
	if len(a.checkedPages) > 0 {
		pages := make([]int, 0, len(a.checkedPages))
		for p := range a.checkedPages {
			pages = append(pages, p)
		}
		if err := a.navEngine.SetTagsBulk(pages, tag); err != nil {
			a.ShowError("Saving tags", err)
		}
		a.checkedPages = make(map[int]bool)
		a.refresh()
		return
	}
	a.tagAndAdvance(tag)
}

// tagAndAdvance tags the current page and moves to the next visible
// page, unless retagging already moved the view off the page.
func (a *App) tagAndAdvance(tag types.Tag) {
	if a.navEngine == nil {
		return
	}
	page, ok := a.navEngine.CurrentPage()
	if !ok {
		return
	}
	if err := a.navEngine.SetTag(page, tag); err != nil {
		a.ShowError("Saving tags", err)
	}
	if cur, ok := a.navEngine.CurrentPage(); ok && cur == page {
		a.navEngine.Next()
	}
	a.refresh()
}

// applyFilters reads the checkboxes into the navigation engine.
func (a *App) applyFilters() {
	if a.navEngine == nil {
		return
	}
	var active []types.Tag
	for _, tag := range types.AllTags {
		if a.filterChecks[tag].Checked {
			active = append(active, tag)
		}
	}
	a.navEngine.SetActiveFilters(active)
	a.refresh()
}

func (a *App) runSearch() {
	if a.navEngine == nil || a.searchEngine == nil {
		return
	}
	if err := a.searchEngine.Run(a.searchEntry.Text, a.navEngine.VisiblePages()); err != nil {
		a.ShowError("Search", err)
		return
	}
	a.jumpToCurrentHit()
}

func (a *App) stepSearch(forward bool) {
	if a.searchEngine == nil {
		return
	}
	if forward {
		a.searchEngine.Next()
	} else {
		a.searchEngine.Prev()
	}
	a.jumpToCurrentHit()
}

func (a *App) jumpToCurrentHit() {
	if hit, ok := a.searchEngine.Current(); ok {
		a.navEngine.GoToFilePage(hit.Page)
	}
	a.refresh()
}

// copySelection puts the selected text on the clipboard.
func (a *App) copySelection() {
	text := a.selEngine.Text()
	if text == "" {
		return
	}
	a.mainWindow.Clipboard().SetContent(text)
	log.Debugf("Copied %d characters", len(text))
}

// copyPageText puts the full text of the current page on the clipboard.
func (a *App) copyPageText() {
	if a.doc == nil || a.navEngine == nil {
		return
	}
	page, ok := a.navEngine.CurrentPage()
	if !ok {
		return
	}
	text, err := a.doc.Text(page)
	if err != nil {
		a.ShowError("Copying page text", err)
		return
	}
	if text == "" {
		return
	}
	a.mainWindow.Clipboard().SetContent(text)
	log.Debugf("Copied page %d text, %d characters", page+1, len(text))
}

// exportFiltered writes the visible pages to <name><suffix>.pdf next to
// the source file.
func (a *App) exportFiltered() {
	if a.doc == nil || a.navEngine == nil {
		return
	}
	dst := export.OutputPath(a.doc.Path(), a.cfg.Export.Suffix)
	err := export.Filtered(a.exporter, a.doc.Path(), dst, a.navEngine.VisiblePages())
	if err != nil {
		a.ShowError("Export", err)
		return
	}
	a.ShowInfo(fmt.Sprintf("Exported %d pages to %s", a.navEngine.VisibleCount(), dst))
}

func (a *App) showOpenDialog() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		if err := a.OpenFile(path); err != nil {
			a.ShowError("Opening file", err)
			return
		}
		a.refresh()
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

// refresh redraws the page view, timeline and status bar from engine
// state.
func (a *App) refresh() {
	if a.pageView == nil {
		return
	}
	if a.navEngine == nil {
		a.pageView.ShowEmpty("No document loaded")
		a.timeline.SetSegments(nil, -1)
		a.updateStatus()
		return
	}

	if page, ok := a.navEngine.CurrentPage(); ok {
		a.pageView.ShowPage(page, a.tagFillColor(a.navEngine.TagOf(page)))
		a.pageView.SetSearchRects(a.currentHitRects(page))
	} else {
		a.pageView.ShowEmpty("No pages match the filter")
	}

	colors, current := timelineSegments(a.navEngine, a.tagFillColor)
	a.timeline.SetSegments(colors, current)

	if a.pageList != nil {
		a.pageList.Refresh()
		if _, ok := a.navEngine.CurrentPage(); ok {
			a.pageList.Select(a.navEngine.CurrentIndex())
		} else {
			a.pageList.UnselectAll()
		}
	}

	a.updateStatus()
}

// timelineSegments colors one segment per file page, untagged pages
// included, and reports the current file page or -1 for the empty view.
func timelineSegments(engine *nav.Engine, colorOf func(types.Tag) color.Color) ([]color.Color, int) {
	colors := make([]color.Color, engine.TotalPages())
	for p := range colors {
		colors[p] = colorOf(engine.TagOf(p))
	}
	current := -1
	if page, ok := engine.CurrentPage(); ok {
		current = page
	}
	return colors, current
}

// currentHitRects returns the active search hit's rectangle when it
// lies on the given page.
func (a *App) currentHitRects(page int) []types.Rect {
	if a.searchEngine == nil {
		return nil
	}
	if hit, ok := a.searchEngine.Current(); ok && hit.Page == page {
		return []types.Rect{hit.Rect}
	}
	return nil
}

func (a *App) updateStatus() {
	if a.navEngine == nil {
		a.statusLabel.SetText("Open a PDF to begin")
		a.countsLabel.SetText("")
		a.searchLabel.SetText("")
		return
	}

	if page, ok := a.navEngine.CurrentPage(); ok {
		a.statusLabel.SetText(fmt.Sprintf("Page %d / %d (file page %d)",
			a.navEngine.CurrentIndex()+1, a.navEngine.VisibleCount(), page+1))
	} else {
		a.statusLabel.SetText("0 / 0 No pages match the filter")
	}

	counts := a.navEngine.Counts()
	total := a.navEngine.TotalPages()
	parts := make([]string, 0, 4)
	for _, tag := range []types.Tag{types.TagGreen, types.TagYellow, types.TagRed} {
		pct := 0
		if total > 0 {
			pct = counts[tag] * 100 / total
		}
		parts = append(parts, fmt.Sprintf("%s: %d (%d%%)", tag, counts[tag], pct))
	}
	if a.selEngine.HasSelection() {
		parts = append(parts, fmt.Sprintf("%d words selected", len(a.selEngine.SelectedWords())))
	}
	a.countsLabel.SetText(strings.Join(parts, "   "))

	if a.searchEngine != nil && a.searchEngine.Query() != "" {
		a.searchLabel.SetText(fmt.Sprintf("%d / %d",
			a.searchEngine.CurrentHitIndex()+1, a.searchEngine.HitCount()))
	} else {
		a.searchLabel.SetText("")
	}
}

// docRenderer hands the page view a renderer that survives the
// document being swapped by OpenFile.
func (a *App) docRenderer() types.Renderer {
	return &swappableRenderer{app: a}
}

// swappableRenderer forwards to the currently open document.
type swappableRenderer struct {
	app *App
}

func (s *swappableRenderer) current() (*pdf.Document, error) {
	if s.app.doc == nil {
		return nil, fmt.Errorf("gui: no document open")
	}
	return s.app.doc, nil
}

func (s *swappableRenderer) PageCount() int {
	if s.app.doc == nil {
		return 0
	}
	return s.app.doc.PageCount()
}

func (s *swappableRenderer) PageSize(page int) (float64, float64, error) {
	doc, err := s.current()
	if err != nil {
		return 0, 0, err
	}
	return doc.PageSize(page)
}

func (s *swappableRenderer) Words(page int) ([]types.WordBox, error) {
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	return doc.Words(page)
}

func (s *swappableRenderer) SearchText(page int, query string) ([]types.Rect, error) {
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	return doc.SearchText(page, query)
}

func (s *swappableRenderer) Render(page int, width, height float64) (image.Image, error) {
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	return doc.Render(page, width, height)
}

func (s *swappableRenderer) Text(page int) (string, error) {
	doc, err := s.current()
	if err != nil {
		return "", err
	}
	return doc.Text(page)
}

// tagFillColor converts the configured hex color of a tag.
func (a *App) tagFillColor(tag types.Tag) color.Color {
	return parseHexColor(a.cfg.TagColor(tag))
}

// Stop shuts down background work; the window close handles the rest.
func (a *App) Stop() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
}

// ShowError displays an error dialog.
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.Errorf("%s: %v", title, err)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog.
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}
