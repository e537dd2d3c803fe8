package apicollectionv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/lazylist/service"
)

// insert reads a stream of JSON documents (NDJSON or concatenated) and writes
// back every inserted document. The collection is created on first use.
func insert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	name, col, err := ensureCollection(ctx)
	if err != nil {
		return err
	}

	inserted := 0
	defer func() {
		if inserted > 0 {
			s.CollectionChanged(name)
		}
	}()

	jsonReader := jsontext.NewDecoder(r.Body)
	jsonWriter := json.NewEncoder(w)

	for {
		var item jsontext.Value
		err := json2.UnmarshalDecode(jsonReader, &item)
		if errors.Is(err, io.EOF) {
			if inserted == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: document %d: %s", service.ErrorInvalidInput, inserted, err.Error())
		}
		if item.Kind() != '{' {
			return fmt.Errorf("%w: document %d is not an object", service.ErrorInvalidInput, inserted)
		}

		row, err := col.Insert(json.RawMessage(item))
		if err != nil {
			return err
		}

		if inserted == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		inserted++
		jsonWriter.Encode(row.Payload)
	}
}
