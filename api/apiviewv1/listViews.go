package apiviewv1

import (
	"context"

	"github.com/fulldump/lazylist/api/apicollectionv1"
)

func listViews(ctx context.Context) ([]*ViewResponse, error) {

	result := []*ViewResponse{}
	for _, view := range apicollectionv1.GetServicer(ctx).ListViews() {
		item, err := newViewResponse(ctx, view)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	return result, nil
}
