// Package lazylist presents a huge, externally paged result set as an index
// addressable list while holding at most three pages in memory: the current
// page and its two neighbours.
//
// Access is assumed to be mostly sequential (a table being scrolled), so moving
// to an adjacent page keeps what is already loaded and only fetches the missing
// neighbour. Jumping further away drops the whole window.
//
// Lists are not safe for concurrent use, see Guarded.
package lazylist

import (
	"context"
	"fmt"
	"reflect"
)

const DefaultPageSize = 30

// Stats counts backend calls issued by a list.
type Stats struct {
	Fetches      int `json:"fetches"`
	Counts       int `json:"counts"`
	LastFirstRow int `json:"last_first_row"`
}

type window[T any] struct {
	pageSize  int
	pageIndex int // -1 while nothing is loaded

	current  []T
	previous []T
	next     []T

	cachedSize *int

	fetch func(ctx context.Context, firstRow int) ([]T, error)
	count func(ctx context.Context) (int, error)
	equal func(a, b T) bool

	stats Stats
}

func (w *window[T]) init(pageSize int,
	fetch func(ctx context.Context, firstRow int) ([]T, error),
	count func(ctx context.Context) (int, error),
) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	w.pageSize = pageSize
	w.pageIndex = -1
	w.fetch = fetch
	w.count = count
	w.equal = func(a, b T) bool {
		return reflect.DeepEqual(a, b)
	}
	w.stats.LastFirstRow = -1
}

func (w *window[T]) PageSize() int {
	return w.pageSize
}

func (w *window[T]) Stats() Stats {
	return w.stats
}

// Get returns the entity at position index. found is false when the backend
// has nothing at that position.
func (w *window[T]) Get(ctx context.Context, index int) (item T, found bool, err error) {

	if index < 0 {
		// Not a page of the window, the backend decides what it means.
		page, err := w.load(ctx, index)
		if err != nil || len(page) == 0 {
			return item, false, err
		}
		return page[0], true, nil
	}

	requested := index / w.pageSize
	offset := index % w.pageSize

	page := w.cached(requested)
	if page == nil {
		w.shift(requested)
		page, err = w.load(ctx, requested*w.pageSize)
		if err != nil {
			return item, false, err
		}
		if page == nil {
			page = []T{}
		}
		w.current = page
	}

	if offset >= len(page) {
		return item, false, nil
	}

	return page[offset], true, nil
}

func (w *window[T]) load(ctx context.Context, firstRow int) ([]T, error) {
	w.stats.Fetches++
	w.stats.LastFirstRow = firstRow
	page, err := w.fetch(ctx, firstRow)
	if err != nil {
		return nil, fmt.Errorf("find entities from row %d: %w", firstRow, err)
	}
	return page, nil
}

// cached returns the slot holding page requested, nil if none does.
func (w *window[T]) cached(requested int) []T {
	if w.pageIndex < 0 {
		return nil
	}
	switch requested - w.pageIndex {
	case 0:
		return w.current
	case -1:
		return w.previous
	case 1:
		return w.next
	}
	return nil
}

// shift moves the window so that requested becomes the current page. Adjacent
// moves rotate the slots, anything else empties them. The current slot is
// always left empty for the caller to fill.
func (w *window[T]) shift(requested int) {
	if w.pageIndex >= 0 && requested != w.pageIndex {
		if requested > w.pageIndex {
			w.pageIndex++
			w.previous = w.current
			w.current = w.next
			w.next = nil
		} else {
			w.pageIndex--
			w.next = w.current
			w.current = w.previous
			w.previous = nil
		}
	}
	if w.pageIndex != requested {
		w.pageIndex = requested
		w.previous = nil
		w.next = nil
	}
	w.current = nil
}

// Size returns the total count. The count provider is asked once and the value
// is kept until Refresh.
func (w *window[T]) Size(ctx context.Context) (int, error) {
	if w.cachedSize != nil {
		return *w.cachedSize, nil
	}
	w.stats.Counts++
	n, err := w.count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	w.cachedSize = &n
	return n, nil
}

// IndexOf looks for item in the loaded pages first and falls back to a full
// scan, which fetches every page of the list. Returns -1 if item is missing.
func (w *window[T]) IndexOf(ctx context.Context, item T) (int, error) {

	if w.pageIndex >= 0 {
		slots := []struct {
			page  int
			items []T
		}{
			{w.pageIndex, w.current},
			{w.pageIndex - 1, w.previous},
			{w.pageIndex + 1, w.next},
		}
		for _, slot := range slots {
			for i, candidate := range slot.items {
				if w.equal(candidate, item) {
					return slot.page*w.pageSize + i, nil
				}
			}
		}
	}

	// Slow path
	size, err := w.Size(ctx)
	if err != nil {
		return -1, err
	}
	for i := 0; i < size; i++ {
		candidate, found, err := w.Get(ctx, i)
		if err != nil {
			return -1, err
		}
		if found && w.equal(candidate, item) {
			return i, nil
		}
	}

	return -1, nil
}

func (w *window[T]) Contains(ctx context.Context, item T) (bool, error) {
	i, err := w.IndexOf(ctx, item)
	return i >= 0, err
}

// Reset drops the loaded pages. The cached count survives, use Refresh when
// the backend data itself changed.
func (w *window[T]) Reset() {
	w.pageIndex = -1
	w.current = nil
	w.previous = nil
	w.next = nil
}

func (w *window[T]) Refresh() {
	w.Reset()
	w.cachedSize = nil
}

// Each walks the list from 0 to Size()-1 until f returns false. Positions the
// backend has nothing for are skipped.
func (w *window[T]) Each(ctx context.Context, f func(index int, item T) bool) error {
	size, err := w.Size(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		item, found, err := w.Get(ctx, i)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if !f(i, item) {
			return nil
		}
	}
	return nil
}

// Slice returns the items in [from, to). It stops early when the backend runs
// out of items.
func (w *window[T]) Slice(ctx context.Context, from, to int) ([]T, error) {
	if from < 0 {
		from = 0
	}
	result := []T{}
	for i := from; i < to; i++ {
		item, found, err := w.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		result = append(result, item)
	}
	return result, nil
}
