package pdf

import (
	"sort"
	"strconv"
	"strings"

	"pagetag/pkg/types"
)

// defaultFontSize stands in when a content stream shows text before any
// Tf operator.
const defaultFontSize = 12.0

// glyphWidthFactor approximates glyph advance as a fraction of the font
// size. Without per-font width tables this gives usable word boxes for
// selection and search highlighting.
const glyphWidthFactor = 0.5

// extractWords scans a content stream for positioned text. It tracks
// the text position through Tm, Td, TD and T*, estimates glyph advances
// from the font size, and splits runs on spaces. Coordinates are
// converted from PDF bottom-up to top-left document space using pageH.
func extractWords(content []byte, pageH float64) []types.WordBox {
	ex := &wordExtractor{pageH: pageH, size: defaultFontSize}
	ex.scan(content)
	return ex.words
}

type wordExtractor struct {
	pageH   float64
	size    float64
	leading float64

	x, y         float64 // current text position, PDF space
	lineX, lineY float64 // start of the current text line

	inText bool
	words  []types.WordBox
}

// tjElem is one element of a TJ array: either text or a position
// adjustment in thousandths of the font size.
type tjElem struct {
	text   []byte
	adjust float64
	isText bool
}

func (ex *wordExtractor) scan(data []byte) {
	var nums []float64
	var str []byte
	var hasStr bool
	var arr []tjElem
	var hasArr bool

	reset := func() {
		nums = nums[:0]
		str, hasStr = nil, false
		arr, hasArr = nil, false
	}

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case isPDFSpace(c):
			i++

		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}

		case c == '(':
			str, i = parseLiteralString(data, i)
			hasStr = true

		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i = skipDict(data, i)

		case c == '<':
			str, i = parseHexString(data, i)
			hasStr = true

		case c == '[':
			arr, i = parseTJArray(data, i)
			hasArr = true

		case c == ']':
			i++

		case c == '/':
			i++
			for i < len(data) && isRegular(data[i]) {
				i++
			}

		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := i
			i++
			for i < len(data) && (data[i] == '.' || data[i] == '-' ||
				(data[i] >= '0' && data[i] <= '9')) {
				i++
			}
			if v, err := strconv.ParseFloat(string(data[start:i]), 64); err == nil {
				nums = append(nums, v)
			}

		default:
			start := i
			for i < len(data) && isRegular(data[i]) {
				i++
			}
			op := string(data[start:i])
			if op == "" {
				i++
				break
			}
			ex.apply(op, nums, str, hasStr, arr, hasArr)
			reset()
		}
	}
}

func (ex *wordExtractor) apply(op string, nums []float64, str []byte, hasStr bool, arr []tjElem, hasArr bool) {
	switch op {
	case "BT":
		ex.inText = true
		ex.x, ex.y, ex.lineX, ex.lineY = 0, 0, 0, 0

	case "ET":
		ex.inText = false

	case "Tf":
		if len(nums) > 0 {
			ex.size = nums[len(nums)-1]
			if ex.size <= 0 {
				ex.size = defaultFontSize
			}
		}

	case "TL":
		if len(nums) > 0 {
			ex.leading = nums[len(nums)-1]
		}

	case "Tm":
		if len(nums) >= 6 {
			ex.x, ex.y = nums[4], nums[5]
			ex.lineX, ex.lineY = ex.x, ex.y
		}

	case "Td":
		if len(nums) >= 2 {
			ex.lineX += nums[0]
			ex.lineY += nums[1]
			ex.x, ex.y = ex.lineX, ex.lineY
		}

	case "TD":
		if len(nums) >= 2 {
			ex.leading = -nums[1]
			ex.lineX += nums[0]
			ex.lineY += nums[1]
			ex.x, ex.y = ex.lineX, ex.lineY
		}

	case "T*":
		ex.nextLine()

	case "Tj":
		if ex.inText && hasStr {
			ex.emit(str)
		}

	case "'":
		if ex.inText && hasStr {
			ex.nextLine()
			ex.emit(str)
		}

	case "\"":
		if ex.inText && hasStr {
			ex.nextLine()
			ex.emit(str)
		}

	case "TJ":
		if ex.inText && hasArr {
			for _, el := range arr {
				if el.isText {
					ex.emit(el.text)
				} else {
					ex.x -= el.adjust / 1000 * ex.size
				}
			}
		}
	}
}

func (ex *wordExtractor) nextLine() {
	leading := ex.leading
	if leading == 0 {
		leading = ex.size * 1.2
	}
	ex.lineY -= leading
	ex.x, ex.y = ex.lineX, ex.lineY
}

// emit splits a decoded string on spaces and appends a WordBox per
// word, advancing the text position across the whole run.
func (ex *wordExtractor) emit(raw []byte) {
	text := decodeLatin1(raw)
	charW := glyphWidthFactor * ex.size

	var word strings.Builder
	wordX := ex.x
	flush := func() {
		if word.Len() == 0 {
			return
		}
		ex.words = append(ex.words, types.WordBox{
			Rect: types.NewRect(wordX, ex.pageH-ex.y-ex.size, ex.x, ex.pageH-ex.y),
			Text: word.String(),
		})
		word.Reset()
	}

	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			flush()
			ex.x += charW
			wordX = ex.x
			continue
		}
		word.WriteRune(r)
		ex.x += charW
	}
	flush()
}

func sortWords(words []types.WordBox) {
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Rect.Y0 != words[j].Rect.Y0 {
			return words[i].Rect.Y0 < words[j].Rect.Y0
		}
		return words[i].Rect.X0 < words[j].Rect.X0
	})
}

// decodeLatin1 treats string bytes as PDFDocEncoding, close enough to
// Latin-1 for the printable range.
func decodeLatin1(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isPDFSpace(c) && !isDelim(c)
}

// parseLiteralString reads a (...) string starting at pos, handling
// nesting and backslash escapes. Returns the bytes and the position
// after the closing parenthesis.
func parseLiteralString(data []byte, pos int) ([]byte, int) {
	pos++ // opening '('
	var out []byte
	depth := 1
	for pos < len(data) && depth > 0 {
		c := data[pos]
		pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth > 0 {
				out = append(out, c)
			}
		case '\\':
			if pos >= len(data) {
				break
			}
			esc := data[pos]
			pos++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, esc)
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for j := 0; j < 2 && pos < len(data) && data[pos] >= '0' && data[pos] <= '7'; j++ {
						oct = oct*8 + int(data[pos]-'0')
						pos++
					}
					out = append(out, byte(oct))
				} else {
					out = append(out, esc)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out, pos
}

// parseHexString reads a <...> string starting at pos.
func parseHexString(data []byte, pos int) ([]byte, int) {
	pos++ // opening '<'
	var out []byte
	hi := -1
	for pos < len(data) {
		c := data[pos]
		pos++
		if c == '>' {
			if hi >= 0 {
				out = append(out, byte(hi<<4))
			}
			return out, pos
		}
		if isPDFSpace(c) {
			continue
		}
		v := hexVal(c)
		if v < 0 {
			continue
		}
		if hi < 0 {
			hi = v
		} else {
			out = append(out, byte(hi<<4|v))
			hi = -1
		}
	}
	return out, pos
}

// parseTJArray reads a [...] array of strings and adjustments.
func parseTJArray(data []byte, pos int) ([]tjElem, int) {
	pos++ // opening '['
	var out []tjElem
	for pos < len(data) && data[pos] != ']' {
		c := data[pos]
		switch {
		case isPDFSpace(c):
			pos++
		case c == '(':
			var s []byte
			s, pos = parseLiteralString(data, pos)
			out = append(out, tjElem{text: s, isText: true})
		case c == '<':
			var s []byte
			s, pos = parseHexString(data, pos)
			out = append(out, tjElem{text: s, isText: true})
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := pos
			pos++
			for pos < len(data) && (data[pos] == '.' || data[pos] == '-' ||
				(data[pos] >= '0' && data[pos] <= '9')) {
				pos++
			}
			if v, err := strconv.ParseFloat(string(data[start:pos]), 64); err == nil {
				out = append(out, tjElem{adjust: v})
			}
		default:
			pos++
		}
	}
	if pos < len(data) {
		pos++ // closing ']'
	}
	return out, pos
}

// skipDict advances past a << ... >> dictionary, tracking nesting.
func skipDict(data []byte, pos int) int {
	pos += 2
	depth := 1
	for pos < len(data) && depth > 0 {
		if pos+1 < len(data) {
			if data[pos] == '<' && data[pos+1] == '<' {
				depth++
				pos += 2
				continue
			}
			if data[pos] == '>' && data[pos+1] == '>' {
				depth--
				pos += 2
				continue
			}
		}
		if data[pos] == '(' {
			_, pos = parseLiteralString(data, pos)
			continue
		}
		pos++
	}
	return pos
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
