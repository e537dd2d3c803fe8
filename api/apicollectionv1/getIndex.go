package apicollectionv1

import (
	"context"
	"fmt"

	"github.com/fulldump/lazylist/collection"
)

type getIndexInput struct {
	Name string `json:"name"`
}

func getIndex(ctx context.Context, input *getIndexInput) (*collection.CreateIndexOptions, error) {

	collectionName, col, err := currentCollection(ctx)
	if err != nil {
		return nil, err
	}

	for _, options := range col.ListIndexes() {
		if options.Name == input.Name {
			return options, nil
		}
	}

	return nil, fmt.Errorf("%w: '%s' in collection '%s'", collection.ErrIndexNotFound, input.Name, collectionName)
}
