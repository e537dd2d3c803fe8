package apicollectionv1

import (
	"github.com/fulldump/lazylist/collection"
)

type CollectionResponse struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Indexes int    `json:"indexes"`
}

func newCollectionResponse(name string, col *collection.Collection) *CollectionResponse {
	return &CollectionResponse{
		Name:    name,
		Total:   col.Len(),
		Indexes: len(col.ListIndexes()),
	}
}
