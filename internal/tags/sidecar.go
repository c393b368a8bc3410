package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pagetag/pkg/types"
)

// DefaultSidecarSuffix is appended to the PDF path (extension stripped)
// to locate the tag sidecar. Kept compatible with existing sidecars.
const DefaultSidecarSuffix = "_pdf-tagger-sav.json"

// SidecarPath returns the sidecar path for a PDF file.
func SidecarPath(pdfPath, suffix string) string {
	if suffix == "" {
		suffix = DefaultSidecarSuffix
	}
	base := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	return base + suffix
}

// SidecarStore persists a TagMap as a JSON object mapping page index
// strings to tag names, keys sorted numerically ascending so saved
// files diff cleanly.
type SidecarStore struct {
	path string
}

// NewSidecarStore returns a store backed by the given file path.
func NewSidecarStore(path string) *SidecarStore {
	return &SidecarStore{path: path}
}

// Path returns the sidecar file path.
func (s *SidecarStore) Path() string { return s.path }

// Load reads the sidecar. Returns ErrNoSidecar if the file does not
// exist. Non-numeric keys are skipped; unknown tag values survive here
// and are cleaned up by Normalize.
func (s *SidecarStore) Load() (types.TagMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSidecar
		}
		return nil, fmt.Errorf("tags: reading sidecar %s: %w", s.path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tags: parsing sidecar %s: %w", s.path, err)
	}

	m := make(types.TagMap, len(raw))
	for key, val := range raw {
		page, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		m[page] = types.Tag(val)
	}
	return m, nil
}

// Save writes the mapping with numerically sorted keys and two-space
// indentation, replacing any existing sidecar atomically.
func (s *SidecarStore) Save(m types.TagMap) error {
	pages := make([]int, 0, len(m))
	for page := range m {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var buf strings.Builder
	buf.WriteString("{")
	for i, page := range pages {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.WriteString(strconv.Quote(strconv.Itoa(page)))
		buf.WriteString(": ")
		buf.WriteString(strconv.Quote(m[page].String()))
	}
	if len(pages) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("tags: writing sidecar %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tags: replacing sidecar %s: %w", s.path, err)
	}
	return nil
}
