package pdf

import (
	"os"
	"path/filepath"
	"testing"

	gofpdf "github.com/lvillar/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetag/pkg/types"
)

func writeFixturePDF(t *testing.T, texts ...string) string {
	t.Helper()
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range texts {
		doc.AddPage()
		doc.Text(72, 100, text)
	}

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, doc.Output(f))
	return path
}

func TestExtractWordsPositionsAndSplitting(t *testing.T) {
	content := []byte(`BT
/F1 10 Tf
72 700 Td
(Hello world) Tj
0 -20 Td
(Next line) Tj
ET`)

	words := extractWords(content, 792)
	require.Len(t, words, 4)

	assert.Equal(t, "Hello", words[0].Text)
	assert.Equal(t, types.NewRect(72, 82, 97, 92), words[0].Rect)

	assert.Equal(t, "world", words[1].Text)
	assert.Equal(t, 102.0, words[1].Rect.X0)

	// Second line sits 20pt lower on the page.
	assert.Equal(t, "Next", words[2].Text)
	assert.Equal(t, 102.0, words[2].Rect.Y0)
	assert.Equal(t, 72.0, words[2].Rect.X0)
	assert.Equal(t, "line", words[3].Text)
}

func TestExtractWordsTJAdjustments(t *testing.T) {
	content := []byte(`BT /F1 12 Tf 100 100 Td [(A) -500 (B)] TJ ET`)

	words := extractWords(content, 200)
	require.Len(t, words, 2)

	assert.Equal(t, "A", words[0].Text)
	assert.Equal(t, 100.0, words[0].Rect.X0)
	// -500/1000 of the font size widens the gap by 6pt.
	assert.Equal(t, "B", words[1].Text)
	assert.Equal(t, 112.0, words[1].Rect.X0)
}

func TestExtractWordsTmAndTStar(t *testing.T) {
	content := []byte(`BT /F1 10 Tf 14 TL 1 0 0 1 50 600 Tm (first) Tj T* (second) Tj ET`)

	words := extractWords(content, 792)
	require.Len(t, words, 2)

	assert.Equal(t, "first", words[0].Text)
	assert.Equal(t, 50.0, words[0].Rect.X0)
	assert.Equal(t, "second", words[1].Text)
	assert.Equal(t, 50.0, words[1].Rect.X0)
	assert.Equal(t, words[0].Rect.Y0+14, words[1].Rect.Y0)
}

func TestExtractWordsIgnoresTextOutsideBT(t *testing.T) {
	content := []byte(`(stray) Tj BT /F1 10 Tf 10 10 Td (kept) Tj ET`)

	words := extractWords(content, 100)
	require.Len(t, words, 1)
	assert.Equal(t, "kept", words[0].Text)
}

func TestExtractWordsHexString(t *testing.T) {
	// 48 69 is "Hi".
	content := []byte(`BT /F1 10 Tf 10 50 Td <4869> Tj ET`)

	words := extractWords(content, 100)
	require.Len(t, words, 1)
	assert.Equal(t, "Hi", words[0].Text)
}

func TestGroupLinesAndFind(t *testing.T) {
	words := []types.WordBox{
		{Rect: types.NewRect(10, 30, 50, 40), Text: "Next"},
		{Rect: types.NewRect(70, 12, 120, 22), Text: "world"},
		{Rect: types.NewRect(10, 10, 60, 20), Text: "Hello"},
	}

	lines := groupLines(words)
	require.Len(t, lines, 2)
	// 2pt of baseline jitter keeps "world" on the first line.
	assert.Equal(t, "hello world", lines[0].text)
	assert.Equal(t, "next", lines[1].text)

	// A phrase spanning two words unions their boxes.
	hits := lines[0].find("hello world")
	require.Len(t, hits, 1)
	assert.Equal(t, types.NewRect(10, 10, 120, 22), hits[0])

	hits = lines[0].find("world")
	require.Len(t, hits, 1)
	assert.Equal(t, types.NewRect(70, 12, 120, 22), hits[0])

	assert.Empty(t, lines[0].find("unicorn"))
}

func TestGroupLinesGradualDrift(t *testing.T) {
	words := []types.WordBox{
		{Rect: types.NewRect(10, 0, 30, 10), Text: "a"},
		{Rect: types.NewRect(40, 4, 60, 14), Text: "b"},
		{Rect: types.NewRect(70, 8, 90, 18), Text: "c"},
	}

	// Consecutive gaps of 4pt stay grouped even though the first and
	// last words are 8pt apart.
	lines := groupLines(words)
	require.Len(t, lines, 1)
	assert.Equal(t, "a b c", lines[0].text)
}

func TestFindRepeatedMatches(t *testing.T) {
	words := []types.WordBox{
		{Rect: types.NewRect(0, 0, 10, 10), Text: "ha"},
		{Rect: types.NewRect(20, 0, 30, 10), Text: "ha"},
	}

	lines := groupLines(words)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].find("ha"), 2)
}

func TestOpenDocument(t *testing.T) {
	path := writeFixturePDF(t, "Hello PDF Reader", "Second Page")

	doc, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, path, doc.Path())

	w, h, err := doc.PageSize(0)
	require.NoError(t, err)
	assert.InDelta(t, 595, w, 2)
	assert.InDelta(t, 842, h, 2)

	_, _, err = doc.PageSize(5)
	assert.Error(t, err)
}

func TestDocumentWordsAndSearch(t *testing.T) {
	path := writeFixturePDF(t, "Hello PDF Reader")

	doc, err := Open(path)
	require.NoError(t, err)

	words, err := doc.Words(0)
	require.NoError(t, err)
	require.NotEmpty(t, words)

	texts := make([]string, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	assert.Contains(t, texts, "Hello")

	hits, err := doc.SearchText(0, "pdf reader")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = doc.SearchText(0, "unicorn")
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = doc.SearchText(0, "  ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDocumentText(t *testing.T) {
	path := writeFixturePDF(t, "Hello PDF Reader")

	doc, err := Open(path)
	require.NoError(t, err)

	text, err := doc.Text(0)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
}

func TestDocumentRender(t *testing.T) {
	path := writeFixturePDF(t, "Hello PDF Reader")

	doc, err := Open(path)
	require.NoError(t, err)

	img, err := doc.Render(0, 300, 424)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 300, bounds.Dx())
	assert.Equal(t, 424, bounds.Dy())

	_, err = doc.Render(0, 0, 0)
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
