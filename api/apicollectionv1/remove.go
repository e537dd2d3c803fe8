package apicollectionv1

import (
	"context"
	"io"
	"net/http"
)

// remove deletes the selected documents and writes them back as NDJSON.
func remove(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	params, err := parseSelectInput(requestBody)
	if err != nil {
		return err
	}

	s := GetServicer(ctx)
	name, col, err := currentCollection(ctx)
	if err != nil {
		return err
	}

	rows, err := selectRows(params, col)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		defer s.CollectionChanged(name)
	}

	for _, row := range rows {
		err := col.Remove(row)
		if err != nil {
			return err
		}
		w.Write(row.Payload)
		w.Write([]byte("\n"))
	}

	return nil
}
