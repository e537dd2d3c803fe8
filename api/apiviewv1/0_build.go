package apiviewv1

import (
	"github.com/fulldump/box"
)

func BuildV1View(v1 *box.R) *box.R {

	views := v1.Resource("/views").
		WithActions(
			box.Get(listViews),
			box.Post(createView),
		)

	v1.Resource("/views/{viewId}").
		WithActions(
			box.Get(getView),
			box.Delete(deleteView),
			box.ActionPost(get),
			box.ActionPost(slice),
			box.ActionPost(size),
			box.ActionPost(indexOf),
			box.ActionPost(sort),
			box.ActionPost(reset),
		)

	return views
}
