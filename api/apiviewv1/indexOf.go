package apiviewv1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fulldump/lazylist/service"
)

type indexOfInput struct {
	Item json.RawMessage `json:"item"`
}

type indexOfResponse struct {
	Index int `json:"index"`
}

// indexOf looks for a document equal to item, -1 if there is none. Items far
// from the loaded pages make the view fetch every page.
func indexOf(ctx context.Context, input *indexOfInput) (*indexOfResponse, error) {

	if len(input.Item) == 0 {
		return nil, fmt.Errorf("%w: item is mandatory", service.ErrorInvalidInput)
	}

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	i, err := view.IndexOf(ctx, input.Item)
	if err != nil {
		return nil, err
	}

	return &indexOfResponse{Index: i}, nil
}
