package apicollectionv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/service"
)

func createIndex(ctx context.Context, w http.ResponseWriter, input *collection.CreateIndexOptions) (*collection.CreateIndexOptions, error) {

	_, col, err := ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	err = col.Index(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrorInvalidInput, err.Error())
	}

	w.WriteHeader(http.StatusCreated)

	return input, nil
}
