package apicollectionv1

import (
	"context"

	"github.com/fulldump/lazylist/collection"
)

func listIndexes(ctx context.Context) ([]*collection.CreateIndexOptions, error) {

	_, col, err := currentCollection(ctx)
	if err != nil {
		return nil, err
	}

	return col.ListIndexes(), nil
}
