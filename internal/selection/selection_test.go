package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetag/internal/geom"
	"pagetag/pkg/types"
)

// Page 500x500pt in a 1020x1020 container with 10px margin: zoom is
// exactly 2, widget = 10 + 2*doc on both axes.
func testMapper() *geom.Mapper {
	return geom.NewMapper(1020, 1020, 500, 500, 10)
}

func testWords() []types.WordBox {
	return []types.WordBox{
		{Rect: types.NewRect(10, 10, 60, 20), Text: "Hello"},
		{Rect: types.NewRect(70, 10, 120, 20), Text: "world"},
		{Rect: types.NewRect(10, 30, 50, 40), Text: "Next"},
	}
}

func newTestEngine() *Engine {
	e := NewEngine(0)
	e.SetPage(testWords(), testMapper())
	return e
}

func TestDragSelectsIntersectedWords(t *testing.T) {
	e := newTestEngine()

	require.True(t, e.BeginDrag(types.Point{X: 25, Y: 25}))
	assert.Equal(t, Dragging, e.State())

	e.UpdateDrag(types.Point{X: 260, Y: 95})
	assert.Len(t, e.SelectedWords(), 3)

	kept := e.EndDrag(types.Point{X: 260, Y: 95})
	assert.True(t, kept)
	assert.Equal(t, Idle, e.State())
	assert.True(t, e.HasSelection())
}

func TestClickClearsSelection(t *testing.T) {
	e := newTestEngine()
	e.SelectAll()
	require.True(t, e.HasSelection())

	require.True(t, e.BeginDrag(types.Point{X: 30, Y: 30}))
	kept := e.EndDrag(types.Point{X: 32, Y: 31})

	assert.False(t, kept)
	assert.False(t, e.HasSelection())
}

func TestDragJustOverThresholdKeepsSelection(t *testing.T) {
	e := newTestEngine()

	// A thin vertical drag: horizontal extent under the click
	// threshold, vertical well over. One axis over is enough.
	require.True(t, e.BeginDrag(types.Point{X: 35, Y: 25}))
	kept := e.EndDrag(types.Point{X: 37, Y: 95})

	assert.True(t, kept)
	assert.Len(t, e.SelectedWords(), 2)
}

func TestDragOutsidePageIgnored(t *testing.T) {
	e := newTestEngine()
	e.SelectAll()

	assert.False(t, e.BeginDrag(types.Point{X: 5, Y: 5}))
	assert.False(t, e.HasSelection())
	assert.Equal(t, Idle, e.State())
}

func TestPartialDragSelectsSubset(t *testing.T) {
	e := newTestEngine()

	require.True(t, e.BeginDrag(types.Point{X: 140, Y: 25}))
	e.UpdateDrag(types.Point{X: 260, Y: 55})

	words := e.SelectedWords()
	require.Len(t, words, 1)
	assert.Equal(t, "world", words[0].Text)
}

func TestReverseDragNormalizes(t *testing.T) {
	e := newTestEngine()

	require.True(t, e.BeginDrag(types.Point{X: 260, Y: 95}))
	e.UpdateDrag(types.Point{X: 25, Y: 25})

	assert.Len(t, e.SelectedWords(), 3)
}

func TestTextReconstruction(t *testing.T) {
	e := newTestEngine()
	e.SelectAll()

	assert.Equal(t, "Hello world\nNext", e.Text())
}

func TestTextSameLineTolerance(t *testing.T) {
	e := NewEngine(0)
	e.SetPage([]types.WordBox{
		{Rect: types.NewRect(50, 13, 90, 23), Text: "baseline"},
		{Rect: types.NewRect(10, 10, 40, 20), Text: "off"},
	}, testMapper())
	e.SelectAll()

	// 3pt of vertical jitter stays on one line; sort is by Y then X.
	assert.Equal(t, "off baseline", e.Text())
}

func TestTextGradualDriftStaysOneLine(t *testing.T) {
	e := NewEngine(0)
	e.SetPage([]types.WordBox{
		{Rect: types.NewRect(10, 0, 30, 10), Text: "a"},
		{Rect: types.NewRect(40, 4, 60, 14), Text: "b"},
		{Rect: types.NewRect(70, 8, 90, 18), Text: "c"},
	}, testMapper())
	e.SelectAll()

	// Each consecutive gap is within tolerance even though the first
	// and last words are 8pt apart.
	assert.Equal(t, "a b c", e.Text())
}

func TestTextEmptySelection(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "", e.Text())
}

func TestWidgetRects(t *testing.T) {
	e := newTestEngine()

	require.True(t, e.BeginDrag(types.Point{X: 25, Y: 25}))
	e.UpdateDrag(types.Point{X: 140, Y: 55})
	require.Len(t, e.SelectedWords(), 1)

	rects := e.WidgetRects()
	require.Len(t, rects, 1)
	assert.Equal(t, types.NewRect(30, 30, 130, 50), rects[0])
}

func TestDragRectVisibleOnlyWhileDragging(t *testing.T) {
	e := newTestEngine()

	_, ok := e.DragRect()
	assert.False(t, ok)

	require.True(t, e.BeginDrag(types.Point{X: 25, Y: 25}))
	e.UpdateDrag(types.Point{X: 100, Y: 100})
	r, ok := e.DragRect()
	require.True(t, ok)
	assert.Equal(t, types.NewRect(25, 25, 100, 100), r)

	e.EndDrag(types.Point{X: 100, Y: 100})
	_, ok = e.DragRect()
	assert.False(t, ok)
}

func TestResizeMidDragCancels(t *testing.T) {
	e := newTestEngine()
	require.True(t, e.BeginDrag(types.Point{X: 25, Y: 25}))

	e.SetMapper(geom.NewMapper(800, 800, 500, 500, 10))

	assert.Equal(t, Idle, e.State())
	assert.False(t, e.HasSelection())
}

func TestSetPageResetsSelection(t *testing.T) {
	e := newTestEngine()
	e.SelectAll()

	e.SetPage(testWords(), testMapper())

	assert.False(t, e.HasSelection())
}
