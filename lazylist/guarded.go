package lazylist

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

const DefaultLockTimeout = 10 * time.Second

// Guarded serializes every operation of a List behind one lock. Waiting for
// the lock is bounded by a timeout; a timeout of 0 tries once and fails fast.
// A slow backend keeps the lock for as long as it takes.
type Guarded[T any] struct {
	list    List[T]
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewGuarded[T any](list List[T], timeout time.Duration) *Guarded[T] {
	return &Guarded[T]{
		list:    list,
		sem:     semaphore.NewWeighted(1),
		timeout: timeout,
	}
}

func NewConcurrentLazyList[T any](paging PagingProvider[T], count CountProvider, pageSize int, timeout time.Duration) *Guarded[T] {
	return NewGuarded[T](NewLazyList(paging, count, pageSize), timeout)
}

func (g *Guarded[T]) lock(ctx context.Context) error {

	if g.sem.TryAcquire(1) {
		return nil
	}

	if g.timeout <= 0 {
		return fmt.Errorf("%w after %s", ErrLockTimeout, g.timeout)
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.sem.Acquire(waitCtx, 1)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrLockInterrupted, ctx.Err())
	}
	return fmt.Errorf("%w after %s", ErrLockTimeout, g.timeout)
}

func (g *Guarded[T]) unlock() {
	g.sem.Release(1)
}

// do runs f holding the lock. The lock is released on every exit path,
// panics included.
func (g *Guarded[T]) do(ctx context.Context, f func() error) error {
	err := g.lock(ctx)
	if err != nil {
		return err
	}
	defer g.unlock()
	return f()
}

func (g *Guarded[T]) Get(ctx context.Context, index int) (item T, found bool, err error) {
	lockErr := g.do(ctx, func() error {
		item, found, err = g.list.Get(ctx, index)
		return nil
	})
	if lockErr != nil {
		return item, false, lockErr
	}
	return
}

func (g *Guarded[T]) Size(ctx context.Context) (n int, err error) {
	err = g.do(ctx, func() error {
		n, err = g.list.Size(ctx)
		return err
	})
	return
}

func (g *Guarded[T]) IndexOf(ctx context.Context, item T) (i int, err error) {
	i = -1
	err = g.do(ctx, func() error {
		i, err = g.list.IndexOf(ctx, item)
		return err
	})
	return
}

func (g *Guarded[T]) Contains(ctx context.Context, item T) (bool, error) {
	i, err := g.IndexOf(ctx, item)
	return i >= 0, err
}

// Each holds the lock during the whole walk, f must not call back into g.
func (g *Guarded[T]) Each(ctx context.Context, f func(index int, item T) bool) error {
	return g.do(ctx, func() error {
		return g.list.Each(ctx, f)
	})
}

func (g *Guarded[T]) Slice(ctx context.Context, from, to int) (items []T, err error) {
	err = g.do(ctx, func() error {
		items, err = g.list.Slice(ctx, from, to)
		return err
	})
	return
}

func (g *Guarded[T]) Reset(ctx context.Context) error {
	return g.do(ctx, func() error {
		g.list.Reset()
		return nil
	})
}

func (g *Guarded[T]) Refresh(ctx context.Context) error {
	return g.do(ctx, func() error {
		g.list.Refresh()
		return nil
	})
}

func (g *Guarded[T]) PageSize() int {
	return g.list.PageSize()
}

func (g *Guarded[T]) Stats(ctx context.Context) (stats Stats, err error) {
	err = g.do(ctx, func() error {
		stats = g.list.Stats()
		return nil
	})
	return
}

func (g *Guarded[T]) Timeout() time.Duration {
	return g.timeout
}

// GuardedSortable is a Guarded SortableLazyList.
type GuardedSortable[T any] struct {
	*Guarded[T]
	sortable *SortableLazyList[T]
}

func NewConcurrentSortableLazyList[T any](paging SortablePagingProvider[T], count SortableCountProvider, pageSize int, timeout time.Duration, sort ...SortField) *GuardedSortable[T] {
	l := NewSortableLazyList(paging, count, pageSize, sort...)
	return &GuardedSortable[T]{
		Guarded:  NewGuarded[T](l, timeout),
		sortable: l,
	}
}

// WithEqual replaces the comparison used by IndexOf. Call it before sharing g.
func (g *GuardedSortable[T]) WithEqual(equal func(a, b T) bool) *GuardedSortable[T] {
	g.sortable.WithEqual(equal)
	return g
}

func (g *GuardedSortable[T]) Sort(ctx context.Context, ascending bool, properties ...string) error {
	return g.do(ctx, func() error {
		g.sortable.Sort(ascending, properties...)
		return nil
	})
}

func (g *GuardedSortable[T]) SortBy(ctx context.Context, fields ...SortField) error {
	return g.do(ctx, func() error {
		g.sortable.SortBy(fields...)
		return nil
	})
}

func (g *GuardedSortable[T]) SortKey(ctx context.Context) (sort []SortField, err error) {
	err = g.do(ctx, func() error {
		sort = g.sortable.SortKey()
		return nil
	})
	return
}
