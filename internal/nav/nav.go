// Package nav owns the page-filtering and navigation state machine: the
// per-page tag map, the set of active tag filters, the derived ordered
// list of visible pages, and the current position within it.
package nav

import (
	"fmt"

	"pagetag/internal/log"
	"pagetag/internal/tags"
	"pagetag/pkg/types"
)

// Engine is the navigation hub. All mutations are synchronous: a call
// returns only after recompute, index repair and persistence have run.
// Not safe for concurrent use; callers drive it from a single event
// loop.
type Engine struct {
	totalPages int
	tagMap     types.TagMap
	filters    map[types.Tag]bool // empty means show all
	visible    []int
	current    int // index into visible; 0 and meaningless when empty

	adapter *tags.Adapter

	// onViewChanged fires after the visible page list changes content.
	// The search engine hangs its invalidation off this.
	onViewChanged func()
}

// NewEngine builds an engine for a document with totalPages pages,
// loading tags through the adapter. A nil adapter disables persistence.
// A failed load degrades to an all-none tag map.
func NewEngine(totalPages int, adapter *tags.Adapter) *Engine {
	e := &Engine{
		totalPages: totalPages,
		filters:    make(map[types.Tag]bool),
		adapter:    adapter,
	}

	if adapter != nil {
		m, err := adapter.Load()
		if err != nil {
			log.Warnf("Loading tags failed, starting untagged: %v", err)
			m = tags.Normalize(nil, totalPages)
		}
		e.tagMap = m
	} else {
		e.tagMap = tags.Normalize(nil, totalPages)
	}

	e.visible = e.computeVisible()
	return e
}

// OnViewChanged registers a hook invoked whenever the visible page list
// changes content. At most one hook; nil clears it.
func (e *Engine) OnViewChanged(fn func()) { e.onViewChanged = fn }

// TotalPages returns the document page count.
func (e *Engine) TotalPages() int { return e.totalPages }

// Tags returns a copy of the tag map.
func (e *Engine) Tags() types.TagMap { return e.tagMap.Clone() }

// TagOf returns the tag of a file page.
func (e *Engine) TagOf(page int) types.Tag { return e.tagMap.Get(page) }

// Counts returns the per-color tag counts.
func (e *Engine) Counts() map[types.Tag]int { return tags.Counts(e.tagMap) }

// VisiblePages returns a copy of the ordered visible page list.
func (e *Engine) VisiblePages() []int {
	out := make([]int, len(e.visible))
	copy(out, e.visible)
	return out
}

// VisibleCount returns the number of pages matching the active filters.
func (e *Engine) VisibleCount() int { return len(e.visible) }

// EmptyView reports whether no page matches the active filters.
func (e *Engine) EmptyView() bool { return len(e.visible) == 0 }

// CurrentIndex returns the position within the visible list.
func (e *Engine) CurrentIndex() int { return e.current }

// CurrentPage resolves the displayed file page. ok is false in the
// empty-view state.
func (e *Engine) CurrentPage() (page int, ok bool) {
	if len(e.visible) == 0 {
		return 0, false
	}
	return e.visible[e.current], true
}

// Next advances one visible page. No-op at the last page; no wraparound.
func (e *Engine) Next() bool {
	if e.current >= len(e.visible)-1 {
		return false
	}
	e.current++
	return true
}

// Prev steps back one visible page. No-op at the first page.
func (e *Engine) Prev() bool {
	if e.current <= 0 || len(e.visible) == 0 {
		return false
	}
	e.current--
	return true
}

// SetTag tags a single page. See SetTagsBulk.
func (e *Engine) SetTag(page int, tag types.Tag) error {
	return e.SetTagsBulk([]int{page}, tag)
}

// SetTagsBulk applies one tag to several pages, persists the map,
// recomputes the visible list and repairs the current index. Setting
// TagNone stores an explicit none entry; the map stays total. A failed
// save is returned after in-memory state has settled, so the UI keeps
// working and can retry.
func (e *Engine) SetTagsBulk(pages []int, tag types.Tag) error {
	if !tag.Valid() {
		return fmt.Errorf("nav: invalid tag %q", tag)
	}

	changed := false
	for _, page := range pages {
		if page < 0 || page >= e.totalPages {
			continue
		}
		if e.tagMap[page] != tag {
			e.tagMap[page] = tag
			changed = true
		}
	}
	if !changed {
		return nil
	}

	var saveErr error
	if e.adapter != nil {
		if saveErr = e.adapter.Save(e.tagMap); saveErr != nil {
			log.Errorf("Saving tags failed: %v", saveErr)
		}
	}

	e.refreshView()
	return saveErr
}

// ActiveFilters returns the enabled filter tags in display order.
// Empty means no filtering.
func (e *Engine) ActiveFilters() []types.Tag {
	out := make([]types.Tag, 0, len(e.filters))
	for _, t := range types.AllTags {
		if e.filters[t] {
			out = append(out, t)
		}
	}
	return out
}

// SetActiveFilters replaces the filter set, recomputes the visible list
// and repairs the current index. All four tags enabled normalizes to no
// filter; the two representations are indistinguishable downstream.
func (e *Engine) SetActiveFilters(filterTags []types.Tag) {
	next := make(map[types.Tag]bool)
	for _, t := range filterTags {
		if t.Valid() {
			next[t] = true
		}
	}
	if len(next) == len(types.AllTags) {
		next = make(map[types.Tag]bool)
	}
	e.filters = next
	e.refreshView()
}

// GoToFilePage jumps to a file page. If the page is filtered out, the
// nearest visible page is chosen: at-or-after first, then before.
// Returns false only in the empty-view state.
func (e *Engine) GoToFilePage(page int) bool {
	if len(e.visible) == 0 {
		return false
	}
	for i, p := range e.visible {
		if p >= page {
			e.current = i
			return true
		}
	}
	e.current = len(e.visible) - 1
	return true
}

// GoToVisibleIndex jumps to a position in the visible list directly.
func (e *Engine) GoToVisibleIndex(idx int) bool {
	if idx < 0 || idx >= len(e.visible) {
		return false
	}
	e.current = idx
	return true
}

// ReplaceTags swaps in an externally loaded tag map (sidecar reload),
// without writing it back out.
func (e *Engine) ReplaceTags(m types.TagMap) {
	e.tagMap = tags.Normalize(m, e.totalPages)
	e.refreshView()
}

// refreshView recomputes the visible list from the tag map and filters,
// repairs the current index, and fires the view-changed hook if the
// list actually changed.
func (e *Engine) refreshView() {
	prevPage, hadPage := e.CurrentPage()
	prev := e.visible

	e.visible = e.computeVisible()

	if hadPage {
		e.repairCurrentIndex(prevPage)
	} else if e.current >= len(e.visible) {
		e.current = 0
	}

	// Content equality, not trigger identity: a filter or tag change
	// that leaves the same pages visible cannot alter anything derived
	// from the visible list (search hits included), so the hook stays
	// quiet. If derived state ever depends on more than the page list,
	// this condition must widen with it.
	if e.onViewChanged != nil && !equalInts(prev, e.visible) {
		e.onViewChanged()
	}
}

// repairCurrentIndex re-anchors the current index after the visible
// list changed under it. Forward-first: keep the same page if still
// visible, else the first visible page after it, else the last visible
// page before it, else the empty-view state.
func (e *Engine) repairCurrentIndex(previousActualPage int) {
	if len(e.visible) == 0 {
		e.current = 0
		return
	}
	for i, p := range e.visible {
		if p == previousActualPage {
			e.current = i
			return
		}
	}
	for i, p := range e.visible {
		if p > previousActualPage {
			e.current = i
			return
		}
	}
	for i := len(e.visible) - 1; i >= 0; i-- {
		if e.visible[i] < previousActualPage {
			e.current = i
			return
		}
	}
	e.current = 0
}

func (e *Engine) computeVisible() []int {
	visible := make([]int, 0, e.totalPages)
	for i := 0; i < e.totalPages; i++ {
		if len(e.filters) == 0 || e.filters[e.tagMap.Get(i)] {
			visible = append(visible, i)
		}
	}
	return visible
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
