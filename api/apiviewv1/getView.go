package apiviewv1

import (
	"context"
)

func getView(ctx context.Context) (*ViewResponse, error) {

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	return newViewResponse(ctx, view)
}
