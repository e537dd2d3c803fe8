package apiviewv1

import (
	"context"
	"time"

	"github.com/fulldump/box"

	"github.com/fulldump/lazylist/api/apicollectionv1"
	"github.com/fulldump/lazylist/lazylist"
	"github.com/fulldump/lazylist/service"
)

type ViewResponse struct {
	Id            string                 `json:"id"`
	Collection    string                 `json:"collection"`
	PageSize      int                    `json:"page_size"`
	Filter        map[string]interface{} `json:"filter"`
	Sort          []lazylist.SortField   `json:"sort"`
	LockTimeoutMs int64                  `json:"lock_timeout_ms"`
	CreatedAt     time.Time              `json:"created_at"`
	Stats         lazylist.Stats         `json:"stats"`
}

func newViewResponse(ctx context.Context, view *service.View) (*ViewResponse, error) {

	sort, err := view.SortKey(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := view.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &ViewResponse{
		Id:            view.Id,
		Collection:    view.Collection,
		PageSize:      view.PageSize,
		Filter:        view.Filter,
		Sort:          sort,
		LockTimeoutMs: view.LockTimeout().Milliseconds(),
		CreatedAt:     view.CreatedAt,
		Stats:         stats,
	}, nil
}

// currentView resolves the {viewId} url parameter.
func currentView(ctx context.Context) (*service.View, error) {
	id := box.GetUrlParameter(ctx, "viewId")
	return apicollectionv1.GetServicer(ctx).GetView(id)
}
