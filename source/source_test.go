package source

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/lazylist"
)

type JSON = map[string]interface{}

func name(item json.RawMessage) string {
	data := JSON{}
	json.Unmarshal(item, &data)
	return data["name"].(string)
}

func TestSource(t *testing.T) {

	biff.Alternative("Collection with 25 documents", func(a *biff.A) {

		ctx := context.Background()
		col, err := collection.OpenCollection(t.TempDir() + "/items")
		biff.AssertNil(err)
		defer col.Close()

		for i := 0; i < 25; i++ {
			col.Insert(JSON{"n": i, "name": string(rune('a' + i)), "even": i%2 == 0})
		}

		a.Alternative("Sequential scan through a lazy list", func(a *biff.A) {
			s := New(col, nil, 10)
			l := lazylist.NewLazyListFromProvider(s.Unsorted(), 10)

			size, err := l.Size(ctx)
			biff.AssertNil(err)
			biff.AssertEqual(size, 25)

			names := ""
			l.Each(ctx, func(index int, item json.RawMessage) bool {
				names += name(item)
				return true
			})
			biff.AssertEqual(names, "abcdefghijklmnopqrstuvwxy")
			biff.AssertEqual(l.Stats().Fetches, 3)
		})

		a.Alternative("Filtered and sorted", func(a *biff.A) {
			s := New(col, JSON{"even": true}, 5)
			l := lazylist.NewSortableLazyList[json.RawMessage](s, s, 5)
			l.Sort(false, "n")

			size, _ := l.Size(ctx)
			biff.AssertEqual(size, 13)

			first, found, err := l.Get(ctx, 0)
			biff.AssertNil(err)
			biff.AssertTrue(found)
			biff.AssertEqual(name(first), "y")

			last, found, _ := l.Get(ctx, 12)
			biff.AssertTrue(found)
			biff.AssertEqual(name(last), "a")

			_, found, _ = l.Get(ctx, 13)
			biff.AssertFalse(found)
		})

		a.Alternative("IndexOf compares content", func(a *biff.A) {
			s := New(col, nil, 10)
			l := lazylist.NewLazyListFromProvider(s.Unsorted(), 10).WithEqual(EqualJSON)

			i, err := l.IndexOf(ctx, json.RawMessage(`{ "name": "c", "n": 2, "even": true }`))
			biff.AssertNil(err)
			biff.AssertEqual(i, 2)
		})

		a.Alternative("Negative first row", func(a *biff.A) {
			s := New(col, nil, 10)
			page, err := s.FindEntities(ctx, -5, nil)
			biff.AssertNil(err)
			biff.AssertEqual(len(page), 0)
		})

		a.Alternative("Cancelled context", func(a *biff.A) {
			s := New(col, nil, 10)
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.FindEntities(cancelled, 0, nil)
			biff.AssertEqual(err, context.Canceled)
		})
	})
}

func TestSortFields(t *testing.T) {
	biff.AssertEqual(SortFields(lazylist.ParseSort("name,-age")), []string{"name", "-age"})
}
