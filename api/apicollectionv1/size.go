package apicollectionv1

import (
	"context"
	"os"
)

type sizeResponse struct {
	Rows    int   `json:"rows"`
	Indexes int   `json:"indexes"`
	Disk    int64 `json:"disk"`
}

func collectionSize(ctx context.Context) (*sizeResponse, error) {

	_, col, err := currentCollection(ctx)
	if err != nil {
		return nil, err
	}

	result := &sizeResponse{
		Rows:    col.Len(),
		Indexes: len(col.ListIndexes()),
	}

	info, err := os.Stat(col.Filename)
	if err == nil {
		result.Disk = info.Size()
	}

	return result, nil
}

func size(ctx context.Context) (*sizeResponse, error) {
	return collectionSize(ctx)
}
