package apicollectionv1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/lazylist/service"
)

type patchInput struct {
	Patch json.RawMessage `json:"patch"`
}

// patch applies a JSON merge patch to the selected documents and writes the
// patched documents as NDJSON.
func patch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	params, err := parseSelectInput(requestBody)
	if err != nil {
		return err
	}

	input := &patchInput{}
	err = json.Unmarshal(requestBody, input)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(input.Patch), []byte("{")) {
		return fmt.Errorf("%w: patch must be an object", service.ErrorInvalidInput)
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
		err := col.Patch(row, input.Patch)
		if err != nil {
			return err
		}
		w.Write(row.Payload)
		w.Write([]byte("\n"))
	}

	return nil
}
