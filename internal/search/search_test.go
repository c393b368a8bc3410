package search

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetag/pkg/types"
)

// fakeRenderer serves canned hit rectangles per page and query.
type fakeRenderer struct {
	pages   map[int]map[string][]types.Rect
	failing map[int]bool
}

func (f *fakeRenderer) PageCount() int { return len(f.pages) }

func (f *fakeRenderer) PageSize(int) (float64, float64, error) { return 612, 792, nil }

func (f *fakeRenderer) Words(int) ([]types.WordBox, error) { return nil, nil }

func (f *fakeRenderer) Text(int) (string, error) { return "", nil }

func (f *fakeRenderer) Render(int, float64, float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (f *fakeRenderer) SearchText(page int, query string) ([]types.Rect, error) {
	if f.failing[page] {
		return nil, errors.New("damaged page")
	}
	return f.pages[page][strings.ToLower(query)], nil
}

func newFake() *fakeRenderer {
	return &fakeRenderer{
		pages: map[int]map[string][]types.Rect{
			0: {"fox": {types.NewRect(10, 10, 40, 20)}},
			1: {},
			2: {"fox": {
				types.NewRect(5, 5, 35, 15),
				types.NewRect(5, 50, 35, 60),
			}},
		},
	}
}

func TestRunCollectsHitsInVisibleOrder(t *testing.T) {
	e := NewEngine(newFake())

	require.NoError(t, e.Run("fox", []int{0, 1, 2}))

	assert.Equal(t, 3, e.HitCount())
	assert.Equal(t, 0, e.CurrentHitIndex())
	hit, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, 0, hit.Page)
}

func TestRunSkipsFilteredPages(t *testing.T) {
	e := NewEngine(newFake())

	require.NoError(t, e.Run("fox", []int{2}))

	assert.Equal(t, 2, e.HitCount())
	hit, _ := e.Current()
	assert.Equal(t, 2, hit.Page)
}

func TestRepeatQueryAdvancesCyclically(t *testing.T) {
	e := NewEngine(newFake())
	require.NoError(t, e.Run("fox", []int{0, 2}))

	require.NoError(t, e.Run("fox", []int{0, 2}))
	assert.Equal(t, 1, e.CurrentHitIndex())

	require.NoError(t, e.Run("fox", []int{0, 2}))
	assert.Equal(t, 2, e.CurrentHitIndex())

	// Wraps back to the first hit.
	require.NoError(t, e.Run("fox", []int{0, 2}))
	assert.Equal(t, 0, e.CurrentHitIndex())
}

func TestNewQueryRestartsFromFirstHit(t *testing.T) {
	f := newFake()
	f.pages[1]["dog"] = []types.Rect{types.NewRect(0, 0, 10, 10)}
	e := NewEngine(f)

	require.NoError(t, e.Run("fox", []int{0, 1, 2}))
	require.NoError(t, e.Run("fox", []int{0, 1, 2}))
	require.NoError(t, e.Run("dog", []int{0, 1, 2}))

	assert.Equal(t, 1, e.HitCount())
	assert.Equal(t, 0, e.CurrentHitIndex())
	assert.Equal(t, "dog", e.Query())
}

func TestNoHits(t *testing.T) {
	e := NewEngine(newFake())

	require.NoError(t, e.Run("unicorn", []int{0, 1, 2}))

	assert.Equal(t, 0, e.HitCount())
	assert.Equal(t, -1, e.CurrentHitIndex())
	_, ok := e.Current()
	assert.False(t, ok)
	assert.False(t, e.Next())
	assert.False(t, e.Prev())
}

func TestEmptyQueryClears(t *testing.T) {
	e := NewEngine(newFake())
	require.NoError(t, e.Run("fox", []int{0, 2}))

	require.NoError(t, e.Run("   ", []int{0, 2}))

	assert.Equal(t, 0, e.HitCount())
	assert.Equal(t, -1, e.CurrentHitIndex())
	assert.Empty(t, e.Query())
}

func TestInvalidateForcesReRun(t *testing.T) {
	e := NewEngine(newFake())
	require.NoError(t, e.Run("fox", []int{0, 2}))
	require.NoError(t, e.Run("fox", []int{0, 2}))
	assert.Equal(t, 1, e.CurrentHitIndex())

	e.Invalidate()
	assert.Equal(t, -1, e.CurrentHitIndex())

	// Same text, but the filter narrowed the view in between.
	require.NoError(t, e.Run("fox", []int{2}))
	assert.Equal(t, 2, e.HitCount())
	assert.Equal(t, 0, e.CurrentHitIndex())
}

func TestNextPrevWrap(t *testing.T) {
	e := NewEngine(newFake())
	require.NoError(t, e.Run("fox", []int{0, 2}))

	assert.True(t, e.Prev())
	assert.Equal(t, 2, e.CurrentHitIndex())
	assert.True(t, e.Next())
	assert.Equal(t, 0, e.CurrentHitIndex())
}

func TestFailingPageIsSkipped(t *testing.T) {
	f := newFake()
	f.failing = map[int]bool{0: true}
	e := NewEngine(f)

	require.NoError(t, e.Run("fox", []int{0, 2}))

	assert.Equal(t, 2, e.HitCount())
	hit, _ := e.Current()
	assert.Equal(t, 2, hit.Page)
}

func TestHitsOnPage(t *testing.T) {
	e := NewEngine(newFake())
	require.NoError(t, e.Run("fox", []int{0, 1, 2}))

	assert.Len(t, e.HitsOnPage(2), 2)
	assert.Len(t, e.HitsOnPage(1), 0)
}
