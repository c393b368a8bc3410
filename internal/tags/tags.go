// Package tags owns tag persistence: normalizing tag maps against a
// document's page count and synchronizing them with the JSON sidecar
// file that lives next to the PDF.
package tags

import (
	"errors"

	"pagetag/pkg/types"
)

// ErrNoSidecar is returned by a Store when no sidecar file exists yet.
// Callers treat it as an empty tag map, not a failure.
var ErrNoSidecar = errors.New("tags: sidecar not found")

// Store reads and writes a raw tag mapping. Implementations decide the
// on-disk format and location.
type Store interface {
	Load() (types.TagMap, error)
	Save(types.TagMap) error
}

// Normalize prunes entries outside [0, totalPages), replaces invalid tag
// values with none, and fills every missing page with none. The result
// is total and independent of the input map. Idempotent.
func Normalize(m types.TagMap, totalPages int) types.TagMap {
	out := make(types.TagMap, totalPages)
	for i := 0; i < totalPages; i++ {
		out[i] = types.TagNone
	}
	for page, tag := range m {
		if page < 0 || page >= totalPages {
			continue
		}
		if !tag.Valid() {
			tag = types.TagNone
		}
		out[page] = tag
	}
	return out
}

// Counts tallies how many pages carry each of the three colored tags.
// TagNone pages are not counted; display code derives them from the
// page total.
func Counts(m types.TagMap) map[types.Tag]int {
	counts := map[types.Tag]int{
		types.TagGreen:  0,
		types.TagYellow: 0,
		types.TagRed:    0,
	}
	for _, tag := range m {
		if _, ok := counts[tag]; ok {
			counts[tag]++
		}
	}
	return counts
}

// Adapter couples a Store with a page count, normalizing everything that
// passes through it in either direction.
type Adapter struct {
	store      Store
	totalPages int
}

// NewAdapter returns an adapter persisting tags for a document with the
// given page count.
func NewAdapter(store Store, totalPages int) *Adapter {
	return &Adapter{store: store, totalPages: totalPages}
}

// Load reads the stored mapping and normalizes it. A missing sidecar
// yields a fresh all-none mapping without error; a later Save recreates
// the file.
func (a *Adapter) Load() (types.TagMap, error) {
	m, err := a.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSidecar) {
			return Normalize(nil, a.totalPages), nil
		}
		return nil, err
	}
	return Normalize(m, a.totalPages), nil
}

// Save normalizes and writes the mapping. The caller's map is not
// mutated, so a failed save leaves in-memory state untouched.
func (a *Adapter) Save(m types.TagMap) error {
	return a.store.Save(Normalize(m, a.totalPages))
}
