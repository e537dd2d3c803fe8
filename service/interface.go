package service

import (
	"context"
	"errors"

	"github.com/fulldump/lazylist/collection"
)

var (
	ErrorCollectionNotFound      = errors.New("collection not found")
	ErrorCollectionAlreadyExists = errors.New("collection already exists")
	ErrorViewNotFound            = errors.New("view not found")
	ErrorInvalidInput            = errors.New("invalid input")
)

type Servicer interface { // todo: review naming
	CreateCollection(name string) (*collection.Collection, error)
	GetCollection(name string) (*collection.Collection, error)
	ListCollections() map[string]*collection.Collection
	DeleteCollection(name string) error

	// CollectionChanged tells the views over name that their pages are stale.
	CollectionChanged(name string)

	CreateView(ctx context.Context, input *CreateViewInput) (*View, error)
	GetView(id string) (*View, error)
	ListViews() []*View
	DeleteView(id string) error
}
