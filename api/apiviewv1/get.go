package apiviewv1

import (
	"context"
	"encoding/json"
)

type getInput struct {
	Index int `json:"index"`
}

type getResponse struct {
	Index int             `json:"index"`
	Found bool            `json:"found"`
	Item  json.RawMessage `json:"item"`
}

func get(ctx context.Context, input *getInput) (*getResponse, error) {

	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}

	item, found, err := view.Get(ctx, input.Index)
	if err != nil {
		return nil, err
	}
	if !found {
		item = json.RawMessage("null")
	}

	return &getResponse{
		Index: input.Index,
		Found: found,
		Item:  item,
	}, nil
}
