package apiviewv1

import (
	"context"
	"net/http"
)

type resetInput struct {
	Count bool `json:"count"`
}

// reset drops the loaded pages, and the cached count when count is true.
func reset(ctx context.Context, w http.ResponseWriter, input *resetInput) error {

	view, err := currentView(ctx)
	if err != nil {
		return err
	}

	err = view.Reset(ctx, input.Count)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
