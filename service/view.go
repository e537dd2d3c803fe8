package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/fulldump/lazylist/lazylist"
)

// View is a browsing session over one collection: a filter, a sort key and a
// window cache shared by every client that knows its id.
type View struct {
	Id         string
	Collection string
	PageSize   int
	Filter     map[string]interface{}
	CreatedAt  time.Time

	list  *lazylist.GuardedSortable[json.RawMessage]
	stale atomic.Bool
}

// LockTimeout is how long a request waits for the view while another one is
// using it.
func (v *View) LockTimeout() time.Duration {
	return v.list.Timeout()
}

// sync drops pages and count if the collection was written since the last
// access.
func (v *View) sync(ctx context.Context) error {
	if !v.stale.Swap(false) {
		return nil
	}
	err := v.list.Refresh(ctx)
	if err != nil {
		v.stale.Store(true)
	}
	return err
}

func (v *View) Get(ctx context.Context, index int) (json.RawMessage, bool, error) {
	if err := v.sync(ctx); err != nil {
		return nil, false, err
	}
	return v.list.Get(ctx, index)
}

func (v *View) Slice(ctx context.Context, from, to int) ([]json.RawMessage, error) {
	if err := v.sync(ctx); err != nil {
		return nil, err
	}
	return v.list.Slice(ctx, from, to)
}

func (v *View) Size(ctx context.Context) (int, error) {
	if err := v.sync(ctx); err != nil {
		return 0, err
	}
	return v.list.Size(ctx)
}

func (v *View) IndexOf(ctx context.Context, item json.RawMessage) (int, error) {
	if err := v.sync(ctx); err != nil {
		return -1, err
	}
	return v.list.IndexOf(ctx, item)
}

// Sort replaces the sort key, see lazylist.ParseSort for the notation.
func (v *View) Sort(ctx context.Context, sort string) error {
	return v.list.SortBy(ctx, lazylist.ParseSort(sort)...)
}

func (v *View) SortKey(ctx context.Context) ([]lazylist.SortField, error) {
	return v.list.SortKey(ctx)
}

// Reset drops the loaded pages. With count the cached size is dropped too.
func (v *View) Reset(ctx context.Context, count bool) error {
	if count {
		err := v.list.Refresh(ctx)
		if err == nil {
			v.stale.Store(false)
		}
		return err
	}
	return v.list.Reset(ctx)
}

func (v *View) Stats(ctx context.Context) (lazylist.Stats, error) {
	return v.list.Stats(ctx)
}
