package collection

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"
)

// IndexBtree keeps rows ordered by one or more fields. A field prefixed with
// "-" is ordered descending.
type IndexBtree struct {
	Btree   *btree.BTreeG[*RowOrdered]
	Options *IndexBTreeOptions
	mutex   *sync.RWMutex
}

type IndexBTreeOptions struct {
	Fields []string `json:"fields"`
	Sparse bool     `json:"sparse"`
	Unique bool     `json:"unique"`
}

type IndexBtreeTraverse struct {
	Reverse bool                   `json:"reverse"`
	From    map[string]interface{} `json:"from"`
	To      map[string]interface{} `json:"to"`
}

type RowOrdered struct {
	*Row
	Values []interface{}
}

// newOrderedTree builds a btree ordered by fields. Rows with equal values are
// kept in insertion order unless unique is set.
func newOrderedTree(fields []string, unique bool) *btree.BTreeG[*RowOrdered] {

	reverse := make([]bool, len(fields))
	for i, field := range fields {
		_, reverse[i] = sortField(field)
	}

	return btree.NewG(32, func(a, b *RowOrdered) bool {

		for i, valA := range a.Values {
			if i >= len(b.Values) {
				break
			}
			c := compareValues(valA, b.Values[i])
			if c == 0 {
				continue
			}
			if reverse[i] {
				return c > 0
			}
			return c < 0
		}

		if unique {
			return false
		}

		return rowPosition(a) < rowPosition(b)
	})
}

// rowPosition puts pivots (no row) before any real row with the same values.
func rowPosition(r *RowOrdered) int {
	if r.Row == nil {
		return -1
	}
	return r.Row.I
}

func NewIndexBTree(options *IndexBTreeOptions) *IndexBtree {
	return &IndexBtree{
		Btree:   newOrderedTree(options.Fields, options.Unique),
		Options: options,
		mutex:   &sync.RWMutex{},
	}
}

// values extracts the indexed values of a row. exists is false if one of the
// fields is missing.
func rowValues(r *Row, fields []string) (values []interface{}, exists bool, err error) {

	data := map[string]interface{}{}
	err = json.Unmarshal(r.Payload, &data)
	if err != nil {
		return nil, false, fmt.Errorf("unmarshal: %w", err)
	}

	for _, field := range fields {
		name, _ := sortField(field)
		value, ok := lookup(data, name)
		if !ok {
			return nil, false, nil
		}
		values = append(values, value)
	}

	return values, true, nil
}

func (b *IndexBtree) AddRow(r *Row) error {

	values, exists, err := rowValues(r, b.Options.Fields)
	if err != nil {
		return err
	}
	if !exists {
		if b.Options.Sparse {
			return nil
		}
		return fmt.Errorf("field '%s' not defined", strings.Join(b.Options.Fields, "', '"))
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.Options.Unique && b.Btree.Has(&RowOrdered{Values: values}) {
		errKey := ""
		for i, field := range b.Options.Fields {
			pair := fmt.Sprint(field, ":", values[i])
			if errKey != "" {
				errKey += "," + pair
			} else {
				errKey = pair
			}
		}
		return fmt.Errorf("%w: key (%s) already exists", ErrIndexConflict, errKey)
	}

	b.Btree.ReplaceOrInsert(&RowOrdered{
		Row:    r,
		Values: values,
	})

	return nil
}

func (b *IndexBtree) RemoveRow(r *Row) error {

	values, exists, err := rowValues(r, b.Options.Fields)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.Btree.Delete(&RowOrdered{
		Row:    r,
		Values: values,
	})

	return nil
}

// Iterate walks every row in index order, or backwards if reverse is set.
func (b *IndexBtree) Iterate(reverse bool, f func(*Row) bool) {

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	iterator := func(r *RowOrdered) bool {
		return f(r.Row)
	}
	if reverse {
		b.Btree.Descend(iterator)
	} else {
		b.Btree.Ascend(iterator)
	}
}

func (b *IndexBtree) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.Btree.Len()
}

func (b *IndexBtree) pivot(values map[string]interface{}) *RowOrdered {
	pivot := &RowOrdered{}
	for _, field := range b.Options.Fields {
		name, _ := sortField(field)
		pivot.Values = append(pivot.Values, values[name])
	}
	return pivot
}

func (b *IndexBtree) Traverse(optionsData []byte, f func(*Row) bool) {

	options := &IndexBtreeTraverse{}
	err := json.Unmarshal(optionsData, options)
	if err != nil {
		return
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	iterator := func(r *RowOrdered) bool {
		return f(r.Row)
	}

	hasFrom := len(options.From) > 0
	hasTo := len(options.To) > 0

	pivotFrom := b.pivot(options.From)
	pivotTo := b.pivot(options.To)

	if !hasFrom && !hasTo {
		if options.Reverse {
			b.Btree.Descend(iterator)
		} else {
			b.Btree.Ascend(iterator)
		}
	} else if hasFrom && !hasTo {
		if options.Reverse {
			b.Btree.DescendGreaterThan(pivotFrom, iterator)
		} else {
			b.Btree.AscendGreaterOrEqual(pivotFrom, iterator)
		}
	} else if !hasFrom && hasTo {
		if options.Reverse {
			b.Btree.DescendLessOrEqual(pivotTo, iterator)
		} else {
			b.Btree.AscendLessThan(pivotTo, iterator)
		}
	} else {
		if options.Reverse {
			b.Btree.DescendRange(pivotTo, pivotFrom, iterator)
		} else {
			b.Btree.AscendRange(pivotFrom, pivotTo, iterator)
		}
	}
}
