package lazylist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fulldump/biff"
)

// slowBackend blocks every fetch until release is closed and tracks how many
// fetches run at the same time.
type slowBackend struct {
	*backend
	started  chan struct{}
	release  chan struct{}
	inflight int32
	maxSeen  int32
}

func newSlowBackend(n, pageSize int) *slowBackend {
	return &slowBackend{
		backend: newBackend(n, pageSize),
		started: make(chan struct{}, 100),
		release: make(chan struct{}),
	}
}

func (s *slowBackend) FindEntities(ctx context.Context, firstRow int) ([]*user, error) {
	n := atomic.AddInt32(&s.inflight, 1)
	defer atomic.AddInt32(&s.inflight, -1)
	for {
		seen := atomic.LoadInt32(&s.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&s.maxSeen, seen, n) {
			break
		}
	}
	s.started <- struct{}{}
	<-s.release
	return s.backend.FindEntities(ctx, firstRow)
}

func TestGuarded_MutualExclusion(t *testing.T) {

	ctx := context.Background()
	b := newSlowBackend(100, 10)
	l := NewConcurrentLazyList[*user](b, b, 10, time.Minute)

	wg := &sync.WaitGroup{}
	for _, index := range []int{5, 55} {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			u, found, err := l.Get(ctx, index)
			biff.AssertNil(err)
			biff.AssertTrue(found)
			biff.AssertEqual(u.Id, index)
		}(index)
	}

	<-b.started
	time.Sleep(50 * time.Millisecond) // give the second goroutine a chance to race
	close(b.release)
	wg.Wait()

	biff.AssertEqual(atomic.LoadInt32(&b.maxSeen), int32(1))
	biff.AssertEqual(len(b.calls()), 2)
}

func TestGuarded_FailFast(t *testing.T) {

	ctx := context.Background()
	b := newSlowBackend(100, 10)
	l := NewConcurrentLazyList[*user](b, b, 10, 0)

	done := make(chan error)
	go func() {
		_, _, err := l.Get(ctx, 0)
		done <- err
	}()
	<-b.started

	t0 := time.Now()
	_, _, err := l.Get(ctx, 15)
	biff.AssertTrue(errors.Is(err, ErrLockTimeout))
	biff.AssertTrue(time.Since(t0) < time.Second)

	_, err = l.Size(ctx)
	biff.AssertTrue(errors.Is(err, ErrLockTimeout))

	close(b.release)
	biff.AssertNil(<-done)

	// lock was released
	u, found, err := l.Get(ctx, 3)
	biff.AssertNil(err)
	biff.AssertTrue(found)
	biff.AssertEqual(u.Id, 3)
}

func TestGuarded_Timeout(t *testing.T) {

	ctx := context.Background()
	b := newSlowBackend(100, 10)
	l := NewConcurrentLazyList[*user](b, b, 10, 30*time.Millisecond)

	go l.Get(ctx, 0)
	<-b.started
	defer close(b.release)

	_, _, err := l.Get(ctx, 0)
	biff.AssertTrue(errors.Is(err, ErrLockTimeout))
}

func TestGuarded_Interrupted(t *testing.T) {

	b := newSlowBackend(100, 10)
	l := NewConcurrentLazyList[*user](b, b, 10, time.Minute)

	go l.Get(context.Background(), 0)
	<-b.started
	defer close(b.release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := l.Size(ctx)
	biff.AssertTrue(errors.Is(err, ErrLockInterrupted))
	biff.AssertTrue(errors.Is(err, context.Canceled))
}

func TestGuarded_ReleasesOnPanic(t *testing.T) {

	ctx := context.Background()
	calls := 0
	paging := PagingFunc[int](func(ctx context.Context, firstRow int) ([]int, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return []int{firstRow, firstRow + 1}, nil
	})
	count := CountFunc(func(ctx context.Context) (int, error) {
		return 2, nil
	})
	l := NewConcurrentLazyList[int](paging, count, 2, 0)

	func() {
		defer func() {
			biff.AssertNotNil(recover())
		}()
		l.Get(ctx, 0)
	}()

	v, found, err := l.Get(ctx, 1)
	biff.AssertNil(err)
	biff.AssertTrue(found)
	biff.AssertEqual(v, 1)
}

func TestGuardedSortable(t *testing.T) {

	ctx := context.Background()
	s := &sorted{backend: newBackend(20, 10)}
	l := NewConcurrentSortableLazyList[*user](s, s, 10, time.Second)

	biff.AssertNil(l.Sort(ctx, false, "id"))
	key, err := l.SortKey(ctx)
	biff.AssertNil(err)
	biff.AssertEqual(key, []SortField{{Property: "id", Ascending: false}})

	u, _, err := l.Get(ctx, 0)
	biff.AssertNil(err)
	biff.AssertEqual(u.Id, 19)

	biff.AssertNil(l.SortBy(ctx, SortField{Property: "id", Ascending: true}))
	u, _, _ = l.Get(ctx, 0)
	biff.AssertEqual(u.Id, 0)

	stats, err := l.Stats(ctx)
	biff.AssertNil(err)
	biff.AssertEqual(stats.Fetches, 2)

	biff.AssertNil(l.Refresh(ctx))
	n, err := l.Size(ctx)
	biff.AssertNil(err)
	biff.AssertEqual(n, 20)
}
