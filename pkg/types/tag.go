package types

import "fmt"

// Tag is a page classification label. Every page always carries exactly
// one tag; untagged pages carry TagNone.
type Tag string

const (
	TagGreen  Tag = "green"
	TagYellow Tag = "yellow"
	TagRed    Tag = "red"
	TagNone   Tag = "none"
)

// AllTags lists every tag in display order.
var AllTags = []Tag{TagGreen, TagYellow, TagRed, TagNone}

// Valid reports whether t is one of the four known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagGreen, TagYellow, TagRed, TagNone:
		return true
	}
	return false
}

func (t Tag) String() string { return string(t) }

// ParseTag converts a string to a Tag, rejecting unknown values.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if !t.Valid() {
		return TagNone, fmt.Errorf("unknown tag %q (want green, yellow, red or none)", s)
	}
	return t, nil
}

// TagMap assigns a tag to every page of a document, keyed by zero-based
// page index. A normalized TagMap is total: every index in [0, pages)
// has an entry, defaulting to TagNone.
type TagMap map[int]Tag

// Clone returns a copy of the map. A nil map clones to an empty one.
func (m TagMap) Clone() TagMap {
	out := make(TagMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the tag for a page, defaulting to TagNone.
func (m TagMap) Get(page int) Tag {
	if t, ok := m[page]; ok {
		return t
	}
	return TagNone
}
