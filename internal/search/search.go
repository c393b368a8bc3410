// Package search runs text queries across the visible pages of a
// document and tracks the active hit for next/previous navigation.
package search

import (
	"strings"

	"pagetag/internal/log"
	"pagetag/pkg/types"
)

// Engine holds the results of the last query. Hits are ordered by
// visible-page order, then top to bottom within a page. Not safe for
// concurrent use.
type Engine struct {
	renderer types.Renderer

	lastQuery string
	hits      []types.SearchHit
	current   int // -1 when there are no hits
}

// NewEngine returns a search engine reading pages through the renderer.
func NewEngine(renderer types.Renderer) *Engine {
	return &Engine{renderer: renderer, current: -1}
}

// Run executes a query over the given visible pages. Repeating the
// exact query while it still has hits advances to the next hit
// cyclically instead of re-searching. An empty query clears all state.
func (e *Engine) Run(query string, visiblePages []int) error {
	if strings.TrimSpace(query) == "" {
		e.Clear()
		return nil
	}

	if query == e.lastQuery && len(e.hits) > 0 {
		e.current = (e.current + 1) % len(e.hits)
		return nil
	}

	e.lastQuery = query
	e.hits = e.hits[:0]

	for _, page := range visiblePages {
		rects, err := e.renderer.SearchText(page, query)
		if err != nil {
			log.Warnf("Search on page %d failed: %v", page, err)
			continue
		}
		for _, r := range rects {
			e.hits = append(e.hits, types.SearchHit{Page: page, Rect: r})
		}
	}

	if len(e.hits) == 0 {
		e.current = -1
	} else {
		e.current = 0
	}
	return nil
}

// Invalidate drops all results. The next Run re-executes even for the
// same query. Called whenever the visible page set changes.
func (e *Engine) Invalidate() {
	e.lastQuery = ""
	e.hits = e.hits[:0]
	e.current = -1
}

// Clear is Invalidate under the name UI code reaches for on an empty
// search box.
func (e *Engine) Clear() { e.Invalidate() }

// Next moves to the next hit, wrapping around. Returns false when there
// are no hits.
func (e *Engine) Next() bool {
	if len(e.hits) == 0 {
		return false
	}
	e.current = (e.current + 1) % len(e.hits)
	return true
}

// Prev moves to the previous hit, wrapping around.
func (e *Engine) Prev() bool {
	if len(e.hits) == 0 {
		return false
	}
	e.current = (e.current - 1 + len(e.hits)) % len(e.hits)
	return true
}

// Current returns the active hit.
func (e *Engine) Current() (types.SearchHit, bool) {
	if e.current < 0 || e.current >= len(e.hits) {
		return types.SearchHit{}, false
	}
	return e.hits[e.current], true
}

// CurrentHitIndex returns the active hit's position, -1 when empty.
func (e *Engine) CurrentHitIndex() int { return e.current }

// HitCount returns the number of hits of the last query.
func (e *Engine) HitCount() int { return len(e.hits) }

// Query returns the last executed query, empty after Invalidate.
func (e *Engine) Query() string { return e.lastQuery }

// HitsOnPage returns the hit rectangles on one file page, for painting
// highlight overlays.
func (e *Engine) HitsOnPage(page int) []types.Rect {
	var out []types.Rect
	for _, h := range e.hits {
		if h.Page == page {
			out = append(out, h.Rect)
		}
	}
	return out
}
