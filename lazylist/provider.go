package lazylist

import (
	"context"
	"strings"
)

// PagingProvider returns up to one page of entities starting at firstRow.
type PagingProvider[T any] interface {
	FindEntities(ctx context.Context, firstRow int) ([]T, error)
}

// CountProvider returns the total number of entities behind a list.
type CountProvider interface {
	Size(ctx context.Context) (int, error)
}

// EntityProvider is a backend able to page and count at the same time.
type EntityProvider[T any] interface {
	PagingProvider[T]
	CountProvider
}

// SortablePagingProvider is a PagingProvider that honors a sort key. An empty
// sort key means natural (backend) order.
type SortablePagingProvider[T any] interface {
	FindEntities(ctx context.Context, firstRow int, sort []SortField) ([]T, error)
}

type SortableCountProvider interface {
	Size(ctx context.Context, sort []SortField) (int, error)
}

type PagingFunc[T any] func(ctx context.Context, firstRow int) ([]T, error)

func (f PagingFunc[T]) FindEntities(ctx context.Context, firstRow int) ([]T, error) {
	return f(ctx, firstRow)
}

type CountFunc func(ctx context.Context) (int, error)

func (f CountFunc) Size(ctx context.Context) (int, error) {
	return f(ctx)
}

type SortablePagingFunc[T any] func(ctx context.Context, firstRow int, sort []SortField) ([]T, error)

func (f SortablePagingFunc[T]) FindEntities(ctx context.Context, firstRow int, sort []SortField) ([]T, error) {
	return f(ctx, firstRow, sort)
}

type SortableCountFunc func(ctx context.Context, sort []SortField) (int, error)

func (f SortableCountFunc) Size(ctx context.Context, sort []SortField) (int, error) {
	return f(ctx, sort)
}

// SortField is one (property, direction) pair of a sort key.
type SortField struct {
	Property  string `json:"property"`
	Ascending bool   `json:"ascending"`
}

// String renders the field the way ParseSort reads it: "name" or "-name".
func (s SortField) String() string {
	if s.Ascending {
		return s.Property
	}
	return "-" + s.Property
}

// ParseSort reads a comma separated sort key like "name,-age".
func ParseSort(s string) []SortField {
	result := []SortField{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "-" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			result = append(result, SortField{Property: part[1:], Ascending: false})
			continue
		}
		result = append(result, SortField{Property: strings.TrimPrefix(part, "+"), Ascending: true})
	}
	return result
}
