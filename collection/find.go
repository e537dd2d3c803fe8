package collection

import (
	"encoding/json"
	"fmt"

	"github.com/SierraSoftworks/connor"
)

// FindOptions selects, orders and pages rows. Sort fields use the btree index
// notation: "name" ascending, "-name" descending. A Limit <= 0 means no limit.
type FindOptions struct {
	Filter map[string]interface{} `json:"filter"`
	Sort   []string               `json:"sort"`
	Skip   int64                  `json:"skip"`
	Limit  int64                  `json:"limit"`
}

type matcher func(row *Row) (bool, error)

func newMatcher(filter map[string]interface{}) matcher {

	if len(filter) == 0 {
		return func(row *Row) (bool, error) {
			return true, nil
		}
	}

	// Rows decode numbers as float64, so must the filter: {"age": 31} would
	// never match otherwise.
	normalized := map[string]interface{}{}
	raw, err := json.Marshal(filter)
	if err == nil {
		err = json.Unmarshal(raw, &normalized)
	}
	if err != nil {
		return func(row *Row) (bool, error) {
			return false, fmt.Errorf("bad filter: %w", err)
		}
	}
	filter = normalized

	return func(row *Row) (bool, error) {
		rowData := map[string]interface{}{}
		err := json.Unmarshal(row.Payload, &rowData)
		if err != nil {
			return false, fmt.Errorf("unmarshal row %d: %w", row.I, err)
		}
		match, err := connor.Match(filter, rowData)
		if err != nil {
			return false, fmt.Errorf("match: %w", err)
		}
		return match, nil
	}
}

// Find calls f with every row selected by options until f returns false.
func (c *Collection) Find(options FindOptions, f func(row *Row) bool) error {

	match := newMatcher(options.Filter)

	skip := options.Skip
	limit := options.Limit

	var result error
	visit := func(row *Row) bool {
		ok, err := match(row)
		if err != nil {
			result = err
			return false
		}
		if !ok {
			return true
		}
		if skip > 0 {
			skip--
			return true
		}
		if !f(row) {
			return false
		}
		if limit > 0 {
			limit--
			if limit == 0 {
				return false
			}
		}
		return true
	}

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	if len(options.Sort) == 0 {
		for _, row := range c.Rows {
			if !visit(row) {
				break
			}
		}
		return result
	}

	index, reverse := c.sortIndex(options.Sort)
	if index != nil {
		index.Iterate(reverse, visit)
		return result
	}

	// No index to lean on, order matching rows in a transient tree
	tree := newOrderedTree(options.Sort, false)
	for _, row := range c.Rows {
		ok, err := match(row)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		values, err := sortValues(row, options.Sort)
		if err != nil {
			return err
		}
		tree.ReplaceOrInsert(&RowOrdered{Row: row, Values: values})
	}

	match = newMatcher(nil)
	tree.Ascend(func(r *RowOrdered) bool {
		return visit(r.Row)
	})

	return result
}

// sortIndex returns a complete btree index ordered exactly by sort (or its
// exact inverse, then reverse is true).
func (c *Collection) sortIndex(sort []string) (index *IndexBtree, reverse bool) {

	for _, candidate := range c.Indexes {
		b, ok := candidate.Index.(*IndexBtree)
		if !ok || b.Options.Sparse || len(b.Options.Fields) != len(sort) {
			continue
		}

		same, inverse := true, true
		for i, field := range b.Options.Fields {
			indexName, indexReverse := sortField(field)
			name, reverse := sortField(sort[i])
			if indexName != name {
				same, inverse = false, false
				break
			}
			if indexReverse == reverse {
				inverse = false
			} else {
				same = false
			}
		}

		if same {
			return b, false
		}
		if inverse {
			return b, true
		}
	}

	return nil, false
}

// sortValues is like rowValues but missing fields sort as null.
func sortValues(row *Row, fields []string) ([]interface{}, error) {

	data := map[string]interface{}{}
	err := json.Unmarshal(row.Payload, &data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal row %d: %w", row.I, err)
	}

	values := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		name, _ := sortField(field)
		value, _ := lookup(data, name)
		values = append(values, value)
	}

	return values, nil
}

// Count returns how many rows match filter.
func (c *Collection) Count(filter map[string]interface{}) (int, error) {

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	if len(filter) == 0 {
		return len(c.Rows), nil
	}

	match := newMatcher(filter)
	n := 0
	for _, row := range c.Rows {
		ok, err := match(row)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}

	return n, nil
}
