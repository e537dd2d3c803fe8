package apicollectionv1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/service"
)

const ContextServicerKey = "ed0fa170-5593-11ed-9d60-9bdc940af29d"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer) // TODO: can raise panic :D
}

// currentCollection resolves the {collectionName} url parameter.
func currentCollection(ctx context.Context) (string, *collection.Collection, error) {
	name := box.GetUrlParameter(ctx, "collectionName")
	col, err := GetServicer(ctx).GetCollection(name)
	return name, col, err
}

// ensureCollection is like currentCollection but creates the collection when
// it does not exist yet.
func ensureCollection(ctx context.Context) (string, *collection.Collection, error) {
	s := GetServicer(ctx)
	name, col, err := currentCollection(ctx)
	if err == service.ErrorCollectionNotFound {
		col, err = s.CreateCollection(name)
		if err == service.ErrorCollectionAlreadyExists {
			// created by a concurrent request
			col, err = s.GetCollection(name)
		}
	}
	return name, col, err
}
