package apiviewv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/lazylist/api/apicollectionv1"
)

func deleteView(ctx context.Context, w http.ResponseWriter) error {

	id := box.GetUrlParameter(ctx, "viewId")

	err := apicollectionv1.GetServicer(ctx).DeleteView(id)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
