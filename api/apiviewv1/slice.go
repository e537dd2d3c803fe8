package apiviewv1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fulldump/lazylist/service"
)

const MaxSliceLength = 1000

type sliceInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type sliceResponse struct {
	From  int               `json:"from"`
	Items []json.RawMessage `json:"items"`
}

// slice returns the items in [from, to), fewer when the view runs out.
func slice(ctx context.Context, input *sliceInput) (*sliceResponse, error) {

	if input.From < 0 || input.To < input.From {
		return nil, fmt.Errorf("%w: bad range [%d, %d)", service.ErrorInvalidInput, input.From, input.To)
	}
	if input.To-input.From > MaxSliceLength {
		return nil, fmt.Errorf("%w: at most %d items per slice", service.ErrorInvalidInput, MaxSliceLength)
	}

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	items, err := view.Slice(ctx, input.From, input.To)
	if err != nil {
		return nil, err
	}

	return &sliceResponse{
		From:  input.From,
		Items: items,
	}, nil
}
