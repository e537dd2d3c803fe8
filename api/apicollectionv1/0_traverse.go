package apicollectionv1

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fulldump/lazylist/collection"
)

// selectInput chooses rows either by unique index (index + value) or by a
// scan with filter, sort, skip and limit. Limit defaults to 1.
type selectInput struct {
	Index string `json:"index"`
	Value string `json:"value"`
	collection.FindOptions
}

func parseSelectInput(input []byte) (*selectInput, error) {
	params := &selectInput{
		FindOptions: collection.FindOptions{
			Limit: 1,
		},
	}
	if len(input) == 0 {
		return params, nil
	}
	err := json.Unmarshal(input, params)
	if err != nil {
		return nil, err
	}
	return params, nil
}

// traverse calls f for every selected row until it returns false.
func traverse(params *selectInput, col *collection.Collection, f func(row *collection.Row) bool) error {

	if params.Index == "" {
		return col.Find(params.FindOptions, f)
	}

	row, err := col.FindByRow(params.Index, params.Value)
	if errors.Is(err, collection.ErrRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	f(row)

	return nil
}

// selectRows collects the selection first, so the caller can modify the
// collection afterwards.
func selectRows(params *selectInput, col *collection.Collection) ([]*collection.Row, error) {
	rows := []*collection.Row{}
	err := traverse(params, col, func(row *collection.Row) bool {
		rows = append(rows, row)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	return rows, nil
}
