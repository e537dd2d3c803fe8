package lazylist

import (
	"context"
)

// List is the behaviour shared by LazyList and SortableLazyList.
type List[T any] interface {
	Get(ctx context.Context, index int) (T, bool, error)
	Size(ctx context.Context) (int, error)
	IndexOf(ctx context.Context, item T) (int, error)
	Contains(ctx context.Context, item T) (bool, error)
	Each(ctx context.Context, f func(index int, item T) bool) error
	Slice(ctx context.Context, from, to int) ([]T, error)
	Reset()
	Refresh()
	PageSize() int
	Stats() Stats
}

type LazyList[T any] struct {
	window[T]
	paging PagingProvider[T]
	count  CountProvider
}

// NewLazyList creates an empty list. Nothing is fetched until the first Get or
// Size. A pageSize <= 0 means DefaultPageSize.
func NewLazyList[T any](paging PagingProvider[T], count CountProvider, pageSize int) *LazyList[T] {
	l := &LazyList[T]{
		paging: paging,
		count:  count,
	}
	l.init(pageSize, paging.FindEntities, count.Size)
	return l
}

func NewLazyListFromProvider[T any](provider EntityProvider[T], pageSize int) *LazyList[T] {
	return NewLazyList[T](provider, provider, pageSize)
}

// WithEqual replaces the comparison used by IndexOf and Contains.
func (l *LazyList[T]) WithEqual(equal func(a, b T) bool) *LazyList[T] {
	l.equal = equal
	return l
}

type SortableLazyList[T any] struct {
	window[T]
	paging SortablePagingProvider[T]
	count  SortableCountProvider
	sort   []SortField
}

func NewSortableLazyList[T any](paging SortablePagingProvider[T], count SortableCountProvider, pageSize int, sort ...SortField) *SortableLazyList[T] {
	l := &SortableLazyList[T]{
		paging: paging,
		count:  count,
		sort:   append([]SortField{}, sort...),
	}
	l.init(pageSize,
		func(ctx context.Context, firstRow int) ([]T, error) {
			return l.paging.FindEntities(ctx, firstRow, l.SortKey())
		},
		func(ctx context.Context) (int, error) {
			return l.count.Size(ctx, l.SortKey())
		},
	)
	return l
}

func (l *SortableLazyList[T]) WithEqual(equal func(a, b T) bool) *SortableLazyList[T] {
	l.equal = equal
	return l
}

// Sort orders the list by the given properties, all in the same direction, and
// drops the loaded pages.
func (l *SortableLazyList[T]) Sort(ascending bool, properties ...string) {
	fields := make([]SortField, 0, len(properties))
	for _, p := range properties {
		fields = append(fields, SortField{Property: p, Ascending: ascending})
	}
	l.SortBy(fields...)
}

// SortBy sets a sort key with one direction per property and drops the loaded
// pages. The next Get fetches under the new order.
func (l *SortableLazyList[T]) SortBy(fields ...SortField) {
	l.sort = append([]SortField{}, fields...)
	l.Reset()
}

// SortKey returns a copy of the current sort key.
func (l *SortableLazyList[T]) SortKey() []SortField {
	return append([]SortField{}, l.sort...)
}
