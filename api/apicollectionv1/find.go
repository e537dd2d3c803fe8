package apicollectionv1

import (
	"context"
	"io"
	"net/http"

	"github.com/fulldump/lazylist/collection"
)

// find writes the selected documents as NDJSON.
func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	params, err := parseSelectInput(requestBody)
	if err != nil {
		return err
	}

	_, col, err := currentCollection(ctx)
	if err != nil {
		return err
	}

	return traverse(params, col, writeRow(w))
}

func writeRow(w io.Writer) func(r *collection.Row) bool {
	return func(row *collection.Row) bool {
		w.Write(row.Payload)
		w.Write([]byte("\n"))
		return true
	}
}
