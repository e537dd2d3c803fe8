package lazylist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type user struct {
	Id   int
	Name string
}

// backend is an in-memory EntityProvider that records every call it gets.
type backend struct {
	mutex     sync.Mutex
	users     []*user
	pageSize  int
	firstRows []int
	counts    int
	fail      error
}

func newBackend(n, pageSize int) *backend {
	b := &backend{pageSize: pageSize}
	for i := 0; i < n; i++ {
		b.users = append(b.users, &user{Id: i, Name: fmt.Sprintf("user-%03d", n-i)})
	}
	return b
}

func (b *backend) FindEntities(ctx context.Context, firstRow int) ([]*user, error) {
	return b.find(firstRow, b.users)
}

func (b *backend) Size(ctx context.Context) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.counts++
	return len(b.users), b.fail
}

func (b *backend) find(firstRow int, users []*user) ([]*user, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.firstRows = append(b.firstRows, firstRow)
	if b.fail != nil {
		return nil, b.fail
	}
	if firstRow < 0 || firstRow >= len(users) {
		return nil, nil
	}
	end := firstRow + b.pageSize
	if end > len(users) {
		end = len(users)
	}
	return users[firstRow:end], nil
}

func (b *backend) calls() []int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]int{}, b.firstRows...)
}

// sorted implements the sortable providers on top of the same data.
type sorted struct {
	*backend
	sorts [][]SortField
}

func (s *sorted) FindEntities(ctx context.Context, firstRow int, key []SortField) ([]*user, error) {
	s.sorts = append(s.sorts, key)
	users := append([]*user{}, s.users...)
	if len(key) > 0 {
		field := key[0]
		less := func(a, b *user) bool {
			if strings.ToLower(field.Property) == "name" {
				return a.Name < b.Name
			}
			return a.Id < b.Id
		}
		sort.SliceStable(users, func(i, j int) bool {
			if field.Ascending {
				return less(users[i], users[j])
			}
			return less(users[j], users[i])
		})
	}
	return s.find(firstRow, users)
}

func (s *sorted) Size(ctx context.Context, key []SortField) (int, error) {
	return s.backend.Size(ctx)
}

var errBackend = errors.New("backend is down")
