package apicollectionv1

import (
	"context"
)

func getCollection(ctx context.Context) (*CollectionResponse, error) {

	name, col, err := currentCollection(ctx)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(name, col), nil
}
