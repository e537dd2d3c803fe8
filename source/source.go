// Package source exposes a collection as the paging and count providers of a
// lazy list.
package source

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/lazylist"
)

// Source pages the documents of a collection that match a filter. It needs to
// know the page size of the list that consumes it.
type Source struct {
	Collection *collection.Collection
	Filter     map[string]interface{}
	PageSize   int
}

func New(col *collection.Collection, filter map[string]interface{}, pageSize int) *Source {
	if pageSize <= 0 {
		pageSize = lazylist.DefaultPageSize
	}
	return &Source{
		Collection: col,
		Filter:     filter,
		PageSize:   pageSize,
	}
}

// FindEntities returns up to PageSize documents starting at firstRow under
// the given sort key. A negative firstRow yields nothing.
func (s *Source) FindEntities(ctx context.Context, firstRow int, sort []lazylist.SortField) ([]json.RawMessage, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := []json.RawMessage{}
	if firstRow < 0 {
		return result, nil
	}

	options := collection.FindOptions{
		Filter: s.Filter,
		Sort:   SortFields(sort),
		Skip:   int64(firstRow),
		Limit:  int64(s.PageSize),
	}

	err := s.Collection.Find(options, func(row *collection.Row) bool {
		payload := make(json.RawMessage, len(row.Payload))
		copy(payload, row.Payload)
		result = append(result, payload)
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Source) Size(ctx context.Context, sort []lazylist.SortField) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Collection.Count(s.Filter)
}

// Unsorted adapts s to the plain providers, always in natural order.
func (s *Source) Unsorted() lazylist.EntityProvider[json.RawMessage] {
	return &unsorted{s}
}

type unsorted struct {
	source *Source
}

func (u *unsorted) FindEntities(ctx context.Context, firstRow int) ([]json.RawMessage, error) {
	return u.source.FindEntities(ctx, firstRow, nil)
}

func (u *unsorted) Size(ctx context.Context) (int, error) {
	return u.source.Size(ctx, nil)
}

// SortFields translates a sort key to the collection notation ("-name").
func SortFields(sort []lazylist.SortField) []string {
	fields := make([]string, 0, len(sort))
	for _, field := range sort {
		fields = append(fields, field.String())
	}
	return fields
}

// EqualJSON compares two documents by content, not by formatting.
func EqualJSON(a, b json.RawMessage) bool {
	var va, vb interface{}
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return string(a) == string(b)
	}
	return reflect.DeepEqual(va, vb)
}
