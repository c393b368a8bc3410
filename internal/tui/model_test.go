package tui

import (
	"image"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetag/internal/config"
	"pagetag/internal/nav"
	"pagetag/internal/search"
	"pagetag/pkg/types"
)

// fakeRenderer serves three pages with fixed text.
type fakeRenderer struct{}

func (fakeRenderer) PageCount() int { return 3 }

func (fakeRenderer) PageSize(int) (float64, float64, error) { return 612, 792, nil }

func (fakeRenderer) Words(int) ([]types.WordBox, error) { return nil, nil }

func (fakeRenderer) Render(int, float64, float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (fakeRenderer) Text(page int) (string, error) {
	return map[int]string{0: "alpha page", 1: "beta page", 2: "gamma page"}[page], nil
}

func (fakeRenderer) SearchText(page int, query string) ([]types.Rect, error) {
	if page == 2 && query == "gamma" {
		return []types.Rect{types.NewRect(10, 10, 40, 20)}, nil
	}
	return nil, nil
}

type fakeExporter struct {
	ranges []types.PageRange
}

func (f *fakeExporter) ExportPages(_, _ string, ranges []types.PageRange) error {
	f.ranges = ranges
	return nil
}

func newTestModel() *Model {
	renderer := fakeRenderer{}
	navEngine := nav.NewEngine(renderer.PageCount(), nil)
	searchEngine := search.NewEngine(renderer)
	navEngine.OnViewChanged(searchEngine.Invalidate)
	return New(config.NewTestConfig(), "/docs/slides.pdf", renderer, navEngine, searchEngine)
}

func press(m *Model, key string) *Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(*Model)
}

func typeText(m *Model, text string) *Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(*Model)
	}
	return m
}

func TestTagAndAdvance(t *testing.T) {
	m := newTestModel()

	m = press(m, "1")

	assert.Equal(t, types.TagGreen, m.navEngine.TagOf(0))
	page, _ := m.navEngine.CurrentPage()
	assert.Equal(t, 1, page)
}

func TestFilterToggle(t *testing.T) {
	m := newTestModel()
	m = press(m, "1") // page 0 green, now on page 1
	m = press(m, "3") // page 1 red, now on page 2

	m = press(m, "g")

	assert.Equal(t, []types.Tag{types.TagGreen}, m.navEngine.ActiveFilters())
	assert.Equal(t, []int{0}, m.navEngine.VisiblePages())

	// Toggling off restores the full view.
	m = press(m, "g")
	assert.Equal(t, 3, m.navEngine.VisibleCount())
}

func TestShowAllKey(t *testing.T) {
	m := newTestModel()
	m = press(m, "g")
	require.Equal(t, 0, m.navEngine.VisibleCount())

	m = press(m, "a")
	assert.Equal(t, 3, m.navEngine.VisibleCount())
}

func TestNavigationKeys(t *testing.T) {
	m := newTestModel()

	m = press(m, "l")
	m = press(m, "l")
	page, _ := m.navEngine.CurrentPage()
	assert.Equal(t, 2, page)

	// Clamped at the end.
	m = press(m, "l")
	page, _ = m.navEngine.CurrentPage()
	assert.Equal(t, 2, page)

	m = press(m, "h")
	page, _ = m.navEngine.CurrentPage()
	assert.Equal(t, 1, page)
}

func TestSearchJumpsToHit(t *testing.T) {
	m := newTestModel()

	m = press(m, "/")
	require.True(t, m.searching)

	m = typeText(m, "gamma")
	m = press(m, "enter")

	require.False(t, m.searching)
	page, _ := m.navEngine.CurrentPage()
	assert.Equal(t, 2, page)
	assert.Equal(t, 1, m.searchEngine.HitCount())
}

func TestSearchEscCancels(t *testing.T) {
	m := newTestModel()

	m = press(m, "/")
	m = typeText(m, "gam")
	m = press(m, "esc")

	assert.False(t, m.searching)
	assert.Equal(t, 0, m.searchEngine.HitCount())
}

func TestExportKeyUsesVisiblePages(t *testing.T) {
	m := newTestModel()
	exporter := &fakeExporter{}
	m.exporter = exporter

	m = press(m, "e")

	assert.Equal(t, []types.PageRange{{Start: 0, End: 2}}, exporter.ranges)
	assert.Contains(t, m.statusMsg, "exported 3 pages")
}

func TestViewRendersState(t *testing.T) {
	m := newTestModel()
	m = press(m, "1")

	view := m.View()
	assert.Contains(t, view, "slides.pdf")
	assert.Contains(t, view, "page 2 / 3")
	assert.Contains(t, view, "green 1")
	assert.Contains(t, view, "beta page")
}

func TestViewEmptyFilterState(t *testing.T) {
	m := newTestModel()
	m = press(m, "g")

	view := m.View()
	assert.Contains(t, view, "No pages match the filter")
	assert.Contains(t, view, "0 / 0")
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel()

	m = press(m, "?")
	assert.Contains(t, m.View(), "toggle filter")

	m = press(m, "?")
	assert.NotContains(t, m.View(), "toggle filter")
}
