package apiviewv1

import (
	"context"
)

type sortInput struct {
	Sort string `json:"sort"`
}

// sort changes the sort key ("name,-age") and drops the loaded pages.
func sort(ctx context.Context, input *sortInput) (*ViewResponse, error) {

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	err = view.Sort(ctx, input.Sort)
	if err != nil {
		return nil, err
	}

	return newViewResponse(ctx, view)
}
