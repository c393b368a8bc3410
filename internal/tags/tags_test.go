package tags

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetag/pkg/types"
)

func TestNormalizeFillsAndPrunes(t *testing.T) {
	m := types.TagMap{
		0:  types.TagGreen,
		2:  types.TagRed,
		7:  types.TagYellow, // out of range, pruned
		-1: types.TagGreen,  // out of range, pruned
	}

	got := Normalize(m, 5)

	assert.Len(t, got, 5)
	assert.Equal(t, types.TagGreen, got[0])
	assert.Equal(t, types.TagNone, got[1])
	assert.Equal(t, types.TagRed, got[2])
	assert.Equal(t, types.TagNone, got[3])
	assert.Equal(t, types.TagNone, got[4])
}

func TestNormalizeIdempotent(t *testing.T) {
	m := types.TagMap{1: types.TagYellow, 9: types.TagRed}
	once := Normalize(m, 4)
	twice := Normalize(once, 4)
	assert.Equal(t, once, twice)
}

func TestNormalizeInvalidTagBecomesNone(t *testing.T) {
	got := Normalize(types.TagMap{0: "purple"}, 1)
	assert.Equal(t, types.TagNone, got[0])
}

func TestNormalizeZeroPages(t *testing.T) {
	got := Normalize(types.TagMap{0: types.TagGreen}, 0)
	assert.Empty(t, got)
}

func TestCounts(t *testing.T) {
	m := types.TagMap{
		0: types.TagGreen,
		1: types.TagGreen,
		2: types.TagRed,
		3: types.TagNone,
	}
	counts := Counts(m)
	assert.Equal(t, 2, counts[types.TagGreen])
	assert.Equal(t, 0, counts[types.TagYellow])
	assert.Equal(t, 1, counts[types.TagRed])
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "/docs/slides_pdf-tagger-sav.json", SidecarPath("/docs/slides.pdf", ""))
	assert.Equal(t, "/docs/slides.tags", SidecarPath("/docs/slides.pdf", ".tags"))
}

func TestSidecarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc_pdf-tagger-sav.json")
	store := NewSidecarStore(path)
	adapter := NewAdapter(store, 3)

	in := types.TagMap{0: types.TagGreen, 2: types.TagRed, 9: types.TagYellow}
	require.NoError(t, adapter.Save(in))

	got, err := adapter.Load()
	require.NoError(t, err)
	assert.Equal(t, Normalize(in, 3), got)
}

func TestSidecarSaveSortsKeysNumerically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	store := NewSidecarStore(path)

	m := types.TagMap{10: types.TagRed, 2: types.TagGreen, 0: types.TagNone}
	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// "2" must sort before "10" despite lexicographic order.
	assert.JSONEq(t, `{"0":"none","2":"green","10":"red"}`, string(data))
	assert.Less(t, strings.Index(string(data), `"2"`), strings.Index(string(data), `"10"`))
}

func TestLoadMissingSidecarIsEmptyMap(t *testing.T) {
	store := NewSidecarStore(filepath.Join(t.TempDir(), "nope.json"))
	adapter := NewAdapter(store, 2)

	got, err := adapter.Load()
	require.NoError(t, err)
	assert.Equal(t, types.TagMap{0: types.TagNone, 1: types.TagNone}, got)
}

func TestLoadCorruptSidecarSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewSidecarStore(path).Load()
	assert.Error(t, err)
}

func TestLoadSkipsNonNumericKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0":"green","version":"red"}`), 0644))

	got, err := NewSidecarStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, types.TagMap{0: types.TagGreen}, got)
}
