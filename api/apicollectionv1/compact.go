package apicollectionv1

import (
	"context"
	"fmt"
)

// compact rewrites the collection log, returns the sizes after the rewrite.
func compact(ctx context.Context) (*sizeResponse, error) {

	_, col, err := currentCollection(ctx)
	if err != nil {
		return nil, err
	}

	err = col.Compact()
	if err != nil {
		return nil, fmt.Errorf("compact: %w", err)
	}

	return collectionSize(ctx)
}
