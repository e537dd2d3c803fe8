package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/database"
	"github.com/fulldump/lazylist/lazylist"
	"github.com/fulldump/lazylist/source"
)

type Service struct {
	db *database.Database

	// Defaults for views created without explicit values
	PageSize    int
	LockTimeout time.Duration

	views      map[string]*View
	viewsMutex sync.RWMutex
}

func NewService(db *database.Database) *Service {
	return &Service{
		db:          db,
		PageSize:    lazylist.DefaultPageSize,
		LockTimeout: lazylist.DefaultLockTimeout,
		views:       map[string]*View{},
	}
}

func (s *Service) CreateCollection(name string) (*collection.Collection, error) {
	col, err := s.db.CreateCollection(name)
	if err == database.ErrCollectionAlreadyExists {
		return nil, ErrorCollectionAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrorInvalidInput, err.Error())
	}
	return col, nil
}

func (s *Service) GetCollection(name string) (*collection.Collection, error) {
	col, err := s.db.GetCollection(name)
	if err == database.ErrCollectionNotFound {
		return nil, ErrorCollectionNotFound
	}
	return col, err
}

func (s *Service) ListCollections() map[string]*collection.Collection {
	result := map[string]*collection.Collection{}
	for _, name := range s.db.ListCollections() {
		col, err := s.db.GetCollection(name)
		if err != nil {
			continue // dropped meanwhile
		}
		result[name] = col
	}
	return result
}

// DeleteCollection drops the collection and every view over it.
func (s *Service) DeleteCollection(name string) error {

	err := s.db.DropCollection(name)
	if err == database.ErrCollectionNotFound {
		return ErrorCollectionNotFound
	}
	if err != nil {
		return err
	}

	s.viewsMutex.Lock()
	defer s.viewsMutex.Unlock()
	for id, view := range s.views {
		if view.Collection == name {
			delete(s.views, id)
		}
	}

	return nil
}

func (s *Service) CollectionChanged(name string) {
	s.viewsMutex.RLock()
	defer s.viewsMutex.RUnlock()
	for _, view := range s.views {
		if view.Collection == name {
			view.stale.Store(true)
		}
	}
}

type CreateViewInput struct {
	Collection    string                 `json:"collection"`
	PageSize      int                    `json:"page_size"`
	Filter        map[string]interface{} `json:"filter"`
	Sort          string                 `json:"sort"`
	LockTimeoutMs *int64                 `json:"lock_timeout_ms"`
}

func (s *Service) CreateView(ctx context.Context, input *CreateViewInput) (*View, error) {

	if input.PageSize < 0 {
		return nil, fmt.Errorf("%w: page_size must not be negative", ErrorInvalidInput)
	}

	col, err := s.GetCollection(input.Collection)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = s.PageSize
	}

	timeout := s.LockTimeout
	if input.LockTimeoutMs != nil {
		if *input.LockTimeoutMs < 0 {
			return nil, fmt.Errorf("%w: lock_timeout_ms must not be negative", ErrorInvalidInput)
		}
		timeout = time.Duration(*input.LockTimeoutMs) * time.Millisecond
	}

	src := source.New(col, input.Filter, pageSize)

	// Count once to reject filters connor cannot evaluate
	_, err = src.Size(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrorInvalidInput, err.Error())
	}

	list := lazylist.NewConcurrentSortableLazyList[json.RawMessage](src, src, pageSize, timeout, lazylist.ParseSort(input.Sort)...)
	list.WithEqual(source.EqualJSON)

	view := &View{
		Id:         uuid.New().String(),
		Collection: input.Collection,
		PageSize:   pageSize,
		Filter:     input.Filter,
		CreatedAt:  time.Now().UTC(),
		list:       list,
	}

	s.viewsMutex.Lock()
	s.views[view.Id] = view
	s.viewsMutex.Unlock()

	return view, nil
}

func (s *Service) GetView(id string) (*View, error) {
	s.viewsMutex.RLock()
	defer s.viewsMutex.RUnlock()

	view, exists := s.views[id]
	if !exists {
		return nil, ErrorViewNotFound
	}

	return view, nil
}

// ListViews returns views sorted by creation time.
func (s *Service) ListViews() []*View {
	s.viewsMutex.RLock()
	result := make([]*View, 0, len(s.views))
	for _, view := range s.views {
		result = append(result, view)
	}
	s.viewsMutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Id < result[j].Id
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

func (s *Service) DeleteView(id string) error {
	s.viewsMutex.Lock()
	defer s.viewsMutex.Unlock()

	_, exists := s.views[id]
	if !exists {
		return ErrorViewNotFound
	}
	delete(s.views, id)

	return nil
}
