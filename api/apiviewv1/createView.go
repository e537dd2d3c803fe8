package apiviewv1

import (
	"context"
	"net/http"

	"github.com/fulldump/lazylist/api/apicollectionv1"
	"github.com/fulldump/lazylist/service"
)

func createView(ctx context.Context, w http.ResponseWriter, input *service.CreateViewInput) (*ViewResponse, error) {

	s := apicollectionv1.GetServicer(ctx)

	view, err := s.CreateView(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := newViewResponse(ctx, view)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return result, nil
}
