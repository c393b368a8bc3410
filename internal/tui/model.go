// Package tui is the terminal front end: tag pages, toggle filters,
// search and export without leaving the shell.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pagetag/internal/config"
	"pagetag/internal/export"
	"pagetag/internal/log"
	"pagetag/internal/nav"
	"pagetag/internal/search"
	"pagetag/pkg/types"
)

// previewLines is how many lines of page text the preview pane shows.
const previewLines = 12

type Model struct {
	cfg          *config.Config
	docPath      string
	renderer     types.Renderer
	navEngine    *nav.Engine
	searchEngine *search.Engine
	exporter     types.Exporter
	styles       styles

	searchInput textinput.Model
	searching   bool

	statusMsg string
	showHelp  bool
	width     int
	height    int
}

// New builds the TUI model around already wired engines.
func New(cfg *config.Config, docPath string, renderer types.Renderer, navEngine *nav.Engine, searchEngine *search.Engine) *Model {
	input := textinput.New()
	input.Placeholder = "search text"
	input.CharLimit = 128

	return &Model{
		cfg:          cfg,
		docPath:      docPath,
		renderer:     renderer,
		navEngine:    navEngine,
		searchEngine: searchEngine,
		exporter:     export.NewPDFExporter(),
		styles:       newStyles(cfg),
		searchInput:  input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit

	case "l", "right", "j", "down", " ":
		if m.navEngine.Next() {
			m.statusMsg = ""
		}

	case "h", "left", "k", "up":
		if m.navEngine.Prev() {
			m.statusMsg = ""
		}

	case "home":
		m.navEngine.GoToVisibleIndex(0)

	case "end":
		m.navEngine.GoToVisibleIndex(m.navEngine.VisibleCount() - 1)

	case "1":
		m.tagAndAdvance(types.TagGreen)
	case "2":
		m.tagAndAdvance(types.TagYellow)
	case "3":
		m.tagAndAdvance(types.TagRed)
	case "4":
		m.tagAndAdvance(types.TagNone)

	case "g":
		m.toggleFilter(types.TagGreen)
	case "y":
		m.toggleFilter(types.TagYellow)
	case "r":
		m.toggleFilter(types.TagRed)
	case "u":
		m.toggleFilter(types.TagNone)
	case "a":
		m.navEngine.SetActiveFilters(nil)
		m.statusMsg = "showing all pages"

	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "n":
		if m.searchEngine.Next() {
			m.jumpToCurrentHit()
		}
	case "N":
		if m.searchEngine.Prev() {
			m.jumpToCurrentHit()
		}

	case "e":
		m.exportFiltered()

	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.runSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// tagAndAdvance mirrors the GUI shortcut: tag the current page, then
// step forward unless the retag already moved the view.
func (m *Model) tagAndAdvance(tag types.Tag) {
	page, ok := m.navEngine.CurrentPage()
	if !ok {
		return
	}
	if err := m.navEngine.SetTag(page, tag); err != nil {
		m.statusMsg = fmt.Sprintf("save failed: %v", err)
		return
	}
	if cur, ok := m.navEngine.CurrentPage(); ok && cur == page {
		m.navEngine.Next()
	}
	m.statusMsg = fmt.Sprintf("page %d tagged %s", page+1, tag)
}

func (m *Model) toggleFilter(tag types.Tag) {
	active := m.navEngine.ActiveFilters()
	next := make([]types.Tag, 0, len(active)+1)
	found := false
	for _, t := range active {
		if t == tag {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, tag)
	}
	m.navEngine.SetActiveFilters(next)
	m.statusMsg = fmt.Sprintf("filters: %s", filterLabel(m.navEngine.ActiveFilters()))
}

func (m *Model) runSearch() {
	query := m.searchInput.Value()
	if err := m.searchEngine.Run(query, m.navEngine.VisiblePages()); err != nil {
		m.statusMsg = fmt.Sprintf("search failed: %v", err)
		return
	}
	if m.searchEngine.HitCount() == 0 {
		if strings.TrimSpace(query) != "" {
			m.statusMsg = fmt.Sprintf("no hits for %q", query)
		}
		return
	}
	m.jumpToCurrentHit()
}

func (m *Model) jumpToCurrentHit() {
	hit, ok := m.searchEngine.Current()
	if !ok {
		return
	}
	m.navEngine.GoToFilePage(hit.Page)
	m.statusMsg = fmt.Sprintf("hit %d / %d", m.searchEngine.CurrentHitIndex()+1, m.searchEngine.HitCount())
}

func (m *Model) exportFiltered() {
	dst := export.OutputPath(m.docPath, m.cfg.Export.Suffix)
	err := export.Filtered(m.exporter, m.docPath, dst, m.navEngine.VisiblePages())
	if err != nil {
		m.statusMsg = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.statusMsg = fmt.Sprintf("exported %d pages to %s", m.navEngine.VisibleCount(), dst)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("PageTag " + m.docPath))
	b.WriteString("\n\n")

	b.WriteString(m.renderStrip())
	b.WriteString("\n\n")

	if page, ok := m.navEngine.CurrentPage(); ok {
		b.WriteString(m.renderPreview(page))
	} else {
		b.WriteString(m.styles.preview.Render("No pages match the filter"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.searching {
		b.WriteString("/" + m.searchInput.View())
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(m.styles.help.Render(helpText))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStrip draws one colored cell per visible page, the current one
// highlighted.
func (m *Model) renderStrip() string {
	visible := m.navEngine.VisiblePages()
	if len(visible) == 0 {
		return m.styles.status.Render("(empty view)")
	}

	cells := make([]string, 0, len(visible))
	for i, page := range visible {
		label := fmt.Sprintf("%d", page+1)
		style := m.styles.tagStyle[m.navEngine.TagOf(page)]
		if i == m.navEngine.CurrentIndex() {
			label = "[" + label + "]"
			style = style.Inherit(m.styles.current)
		}
		cells = append(cells, style.Render(label))
	}
	return strings.Join(cells, " ")
}

func (m *Model) renderPreview(page int) string {
	text, err := m.renderer.Text(page)
	if err != nil {
		log.Debugf("Previewing page %d: %v", page, err)
		return m.styles.preview.Render("(no text on this page)")
	}
	lines := strings.Split(text, "\n")
	if len(lines) > previewLines {
		lines = lines[:previewLines]
	}
	return m.styles.preview.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	var pos string
	if page, ok := m.navEngine.CurrentPage(); ok {
		pos = fmt.Sprintf("page %d / %d (file page %d)",
			m.navEngine.CurrentIndex()+1, m.navEngine.VisibleCount(), page+1)
	} else {
		pos = "0 / 0"
	}

	counts := m.navEngine.Counts()
	tally := fmt.Sprintf("green %d | yellow %d | red %d",
		counts[types.TagGreen], counts[types.TagYellow], counts[types.TagRed])

	line := fmt.Sprintf("%s   %s   filters: %s", pos, tally, filterLabel(m.navEngine.ActiveFilters()))
	if m.statusMsg != "" {
		line += "   " + m.statusMsg
	}
	return m.styles.status.Render(line)
}

func filterLabel(active []types.Tag) string {
	if len(active) == 0 {
		return "all"
	}
	parts := make([]string, len(active))
	for i, t := range active {
		parts[i] = t.String()
	}
	return strings.Join(parts, "+")
}

const helpText = `
  1/2/3/4   tag page green/yellow/red/none and advance
  g/y/r/u   toggle filter for green/yellow/red/untagged
  a         show all pages
  arrows    previous / next page
  /         search, n/N next/previous hit
  e         export visible pages
  q         quit`
