package lazylist

import (
	"context"
	"errors"
	"testing"

	"github.com/fulldump/biff"
	"github.com/google/go-cmp/cmp"
)

func TestLazyList_SequentialScan(t *testing.T) {

	ctx := context.Background()
	b := newBackend(25, 10)
	l := NewLazyListFromProvider[*user](b, 10)

	for i := 0; i < 25; i++ {
		u, found, err := l.Get(ctx, i)
		biff.AssertNil(err)
		biff.AssertTrue(found)
		biff.AssertEqual(u.Id, i)
	}

	if diff := cmp.Diff([]int{0, 10, 20}, b.calls()); diff != "" {
		t.Errorf("fetch calls mismatch (-want +got):\n%s", diff)
	}
	biff.AssertEqual(l.Stats().Fetches, 3)
}

func TestLazyList_FetchesPerScan(t *testing.T) {

	ctx := context.Background()
	for _, c := range []struct{ n, pageSize int }{
		{0, 10}, {1, 10}, {10, 10}, {11, 10}, {99, 7}, {100, 30},
	} {
		b := newBackend(c.n, c.pageSize)
		l := NewLazyListFromProvider[*user](b, c.pageSize)

		size, err := l.Size(ctx)
		biff.AssertNil(err)
		for i := 0; i < size; i++ {
			_, _, err := l.Get(ctx, i)
			biff.AssertNil(err)
		}

		want := (c.n + c.pageSize - 1) / c.pageSize
		if got := len(b.calls()); got != want {
			t.Errorf("n=%d pageSize=%d: %d fetches, want %d", c.n, c.pageSize, got, want)
		}
	}
}

func TestLazyList_PreviousPageIsReused(t *testing.T) {

	ctx := context.Background()
	b := newBackend(25, 10)
	l := NewLazyListFromProvider[*user](b, 10)

	l.Get(ctx, 3)
	l.Get(ctx, 14)
	biff.AssertEqual(len(b.calls()), 2)

	u, found, err := l.Get(ctx, 5)
	biff.AssertNil(err)
	biff.AssertTrue(found)
	biff.AssertEqual(u.Id, 5)
	biff.AssertEqual(len(b.calls()), 2)
}

func TestLazyList_Window(t *testing.T) {

	biff.Alternative("Window over 100 users, pages of 10", func(a *biff.A) {

		ctx := context.Background()
		b := newBackend(100, 10)
		l := NewLazyListFromProvider[*user](b, 10)

		l.Get(ctx, 0)
		l.Get(ctx, 10)
		l.Get(ctx, 20) // previous is page 1, current is page 2
		biff.AssertEqual(b.calls(), []int{0, 10, 20})

		a.Alternative("Scroll back one page", func(a *biff.A) {
			u, _, _ := l.Get(ctx, 19)
			biff.AssertEqual(u.Id, 19)
			biff.AssertEqual(b.calls(), []int{0, 10, 20})

			a.Alternative("Then two pages back", func(a *biff.A) {
				u, _, _ := l.Get(ctx, 9)
				biff.AssertEqual(u.Id, 9)
				biff.AssertEqual(b.calls(), []int{0, 10, 20, 0})

				// page 1 was dropped with the rest of the window
				l.Get(ctx, 15)
				biff.AssertEqual(b.calls(), []int{0, 10, 20, 0, 10})
				l.Get(ctx, 5)
				biff.AssertEqual(len(b.calls()), 5)
			})
		})

		a.Alternative("Jump far away", func(a *biff.A) {
			u, _, _ := l.Get(ctx, 75)
			biff.AssertEqual(u.Id, 75)
			biff.AssertEqual(b.calls(), []int{0, 10, 20, 70})

			a.Alternative("Nothing from the old window survived", func(a *biff.A) {
				l.Get(ctx, 20)
				l.Get(ctx, 10)
				biff.AssertEqual(b.calls(), []int{0, 10, 20, 70, 20, 10})
			})

			a.Alternative("Neighbours are reused again", func(a *biff.A) {
				l.Get(ctx, 65) // page 6, becomes current; page 7 moves to next
				l.Get(ctx, 79)
				l.Get(ctx, 60)
				biff.AssertEqual(b.calls(), []int{0, 10, 20, 70, 60})
			})
		})

		a.Alternative("Jump two pages away", func(a *biff.A) {
			l.Get(ctx, 45)
			l.Get(ctx, 25)
			biff.AssertEqual(b.calls(), []int{0, 10, 20, 40, 20})
		})
	})
}

func TestLazyList_Size(t *testing.T) {

	ctx := context.Background()
	b := newBackend(42, 10)
	l := NewLazyListFromProvider[*user](b, 10)

	for i := 0; i < 5; i++ {
		n, err := l.Size(ctx)
		biff.AssertNil(err)
		biff.AssertEqual(n, 42)
	}
	biff.AssertEqual(b.counts, 1)

	l.Reset()
	l.Size(ctx)
	biff.AssertEqual(b.counts, 1)

	l.Refresh()
	l.Size(ctx)
	l.Size(ctx)
	biff.AssertEqual(b.counts, 2)
	biff.AssertEqual(l.Stats().Counts, 2)
}

func TestLazyList_ResetIsIdempotent(t *testing.T) {

	ctx := context.Background()
	b := newBackend(57, 8)
	l := NewLazyListFromProvider[*user](b, 8)

	before := []*user{}
	for i := 0; i < 60; i += 3 {
		u, _, _ := l.Get(ctx, i)
		before = append(before, u)
	}

	l.Reset()

	after := []*user{}
	for i := 0; i < 60; i += 3 {
		u, _, _ := l.Get(ctx, i)
		after = append(after, u)
	}

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("values changed after reset (-before +after):\n%s", diff)
	}
}

func TestLazyList_OutOfRange(t *testing.T) {

	ctx := context.Background()
	b := newBackend(25, 10)
	l := NewLazyListFromProvider[*user](b, 10)

	u, found, err := l.Get(ctx, 25)
	biff.AssertNil(err)
	biff.AssertFalse(found)
	biff.AssertNil(u)
	biff.AssertEqual(b.calls(), []int{20})

	_, found, err = l.Get(ctx, -1)
	biff.AssertNil(err)
	biff.AssertFalse(found)
	biff.AssertEqual(b.calls(), []int{20, -1})

	// the window was not touched by the negative index
	l.Get(ctx, 24)
	biff.AssertEqual(len(b.calls()), 2)
}

func TestLazyList_BackendError(t *testing.T) {

	ctx := context.Background()
	b := newBackend(25, 10)
	l := NewLazyListFromProvider[*user](b, 10)

	b.fail = errBackend

	_, found, err := l.Get(ctx, 3)
	biff.AssertFalse(found)
	biff.AssertTrue(errors.Is(err, errBackend))

	_, err = l.Size(ctx)
	biff.AssertTrue(errors.Is(err, errBackend))

	b.fail = nil

	u, found, err := l.Get(ctx, 3)
	biff.AssertNil(err)
	biff.AssertTrue(found)
	biff.AssertEqual(u.Id, 3)
}

func TestLazyList_IndexOf(t *testing.T) {

	biff.Alternative("IndexOf", func(a *biff.A) {

		ctx := context.Background()
		b := newBackend(50, 10)
		l := NewLazyListFromProvider[*user](b, 10)

		l.Get(ctx, 10)
		l.Get(ctx, 20) // pages 1 and 2 loaded

		a.Alternative("Item in the window", func(a *biff.A) {
			i, err := l.IndexOf(ctx, b.users[15])
			biff.AssertNil(err)
			biff.AssertEqual(i, 15)
			biff.AssertEqual(len(b.calls()), 2)
		})

		a.Alternative("Equal value in the window", func(a *biff.A) {
			i, err := l.IndexOf(ctx, &user{Id: 22, Name: "user-028"})
			biff.AssertNil(err)
			biff.AssertEqual(i, 22)
		})

		a.Alternative("Item outside the window", func(a *biff.A) {
			i, err := l.IndexOf(ctx, b.users[47])
			biff.AssertNil(err)
			biff.AssertEqual(i, 47)
			biff.AssertEqual(b.counts, 1)
		})

		a.Alternative("Missing item", func(a *biff.A) {
			found, err := l.Contains(ctx, &user{Id: 1000})
			biff.AssertNil(err)
			biff.AssertFalse(found)
		})

		a.Alternative("Custom equality", func(a *biff.A) {
			l.WithEqual(func(x, y *user) bool {
				return x.Id == y.Id
			})
			i, err := l.IndexOf(ctx, &user{Id: 3})
			biff.AssertNil(err)
			biff.AssertEqual(i, 3)
		})
	})
}

func TestLazyList_IndexOfSlotOrder(t *testing.T) {

	// every page of 10 holds exactly one user per last digit
	sameDigit := func(x, y *user) bool {
		return x.Id%10 == y.Id%10
	}

	biff.Alternative("Current before previous", func(a *biff.A) {
		ctx := context.Background()
		b := newBackend(50, 10)
		l := NewLazyListFromProvider[*user](b, 10).WithEqual(sameDigit)

		l.Get(ctx, 10)
		l.Get(ctx, 20) // previous is page 1, current is page 2

		i, err := l.IndexOf(ctx, &user{Id: 5})
		biff.AssertNil(err)
		biff.AssertEqual(i, 25)
		biff.AssertEqual(len(b.calls()), 2)
	})

	biff.Alternative("Current before next", func(a *biff.A) {
		ctx := context.Background()
		b := newBackend(50, 10)
		l := NewLazyListFromProvider[*user](b, 10).WithEqual(sameDigit)

		l.Get(ctx, 20)
		l.Get(ctx, 10) // current is page 1, next is page 2

		i, err := l.IndexOf(ctx, &user{Id: 7})
		biff.AssertNil(err)
		biff.AssertEqual(i, 17)
		biff.AssertEqual(len(b.calls()), 2)
	})
}

func TestLazyList_EachAndSlice(t *testing.T) {

	ctx := context.Background()
	b := newBackend(23, 5)
	l := NewLazyListFromProvider[*user](b, 5)

	ids := []int{}
	err := l.Each(ctx, func(index int, u *user) bool {
		ids = append(ids, u.Id)
		return index < 11
	})
	biff.AssertNil(err)
	biff.AssertEqual(ids, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})

	items, err := l.Slice(ctx, 18, 30)
	biff.AssertNil(err)
	biff.AssertEqual(len(items), 5)
	biff.AssertEqual(items[0].Id, 18)
	biff.AssertEqual(items[4].Id, 22)
}

func TestLazyList_DefaultPageSize(t *testing.T) {
	l := NewLazyListFromProvider[*user](newBackend(1, 1), 0)
	biff.AssertEqual(l.PageSize(), DefaultPageSize)
}

func TestSortableLazyList(t *testing.T) {

	biff.Alternative("Sortable list", func(a *biff.A) {

		ctx := context.Background()
		s := &sorted{backend: newBackend(30, 10)}
		l := NewSortableLazyList[*user](s, s, 10)

		u, _, _ := l.Get(ctx, 0)
		biff.AssertEqual(u.Id, 0)
		biff.AssertEqual(len(s.sorts[0]), 0)

		a.Alternative("Sort by name", func(a *biff.A) {
			l.Sort(true, "name")
			biff.AssertEqual(l.SortKey(), []SortField{{Property: "name", Ascending: true}})

			u, _, _ := l.Get(ctx, 0)
			biff.AssertEqual(u.Name, "user-001")
			biff.AssertEqual(s.calls(), []int{0, 0})
			biff.AssertEqual(s.sorts[1], []SortField{{Property: "name", Ascending: true}})

			a.Alternative("Descending", func(a *biff.A) {
				l.Sort(false, "name")
				u, _, _ := l.Get(ctx, 0)
				biff.AssertEqual(u.Name, "user-030")
			})
		})

		a.Alternative("Sort keeps the count", func(a *biff.A) {
			l.Size(ctx)
			l.SortBy(SortField{Property: "id", Ascending: false})
			n, _ := l.Size(ctx)
			biff.AssertEqual(n, 30)
			biff.AssertEqual(s.counts, 1)

			u, _, _ := l.Get(ctx, 0)
			biff.AssertEqual(u.Id, 29)
		})
	})
}

func TestParseSort(t *testing.T) {
	biff.AssertEqual(ParseSort("name, -age,+id,,-"), []SortField{
		{Property: "name", Ascending: true},
		{Property: "age", Ascending: false},
		{Property: "id", Ascending: true},
	})
	biff.AssertEqual(ParseSort(""), []SortField{})
	biff.AssertEqual(SortField{Property: "age"}.String(), "-age")
}
