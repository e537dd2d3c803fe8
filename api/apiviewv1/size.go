package apiviewv1

import (
	"context"
)

type sizeResponse struct {
	Size int `json:"size"`
}

func size(ctx context.Context) (*sizeResponse, error) {

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	n, err := view.Size(ctx)
	if err != nil {
		return nil, err
	}

	return &sizeResponse{Size: n}, nil
}
