package collection

import (
	"encoding/json"
	"fmt"
	"sync"
)

// IndexMap is a unique index over one string field. Array fields index every
// element.
type IndexMap struct {
	Entries map[string]*Row
	RWmutex *sync.RWMutex
	Options *IndexMapOptions
}

type IndexMapOptions struct {
	Field  string `json:"field"`
	Sparse bool   `json:"sparse"`
}

func NewIndexMap(options *IndexMapOptions) *IndexMap {
	return &IndexMap{
		Entries: map[string]*Row{},
		RWmutex: &sync.RWMutex{},
		Options: options,
	}
}

func (i *IndexMap) keys(row *Row) ([]string, bool, error) {

	item := map[string]interface{}{}
	err := json.Unmarshal(row.Payload, &item)
	if err != nil {
		return nil, false, fmt.Errorf("unmarshal: %w", err)
	}

	field := i.Options.Field
	itemValue, itemExists := lookup(item, field)
	if !itemExists {
		return nil, false, nil
	}

	switch value := itemValue.(type) {
	case string:
		return []string{value}, true, nil
	case []interface{}:
		keys := make([]string, 0, len(value))
		for _, v := range value {
			s, ok := v.(string)
			if !ok {
				return nil, true, fmt.Errorf("field '%s' must contain only strings", field)
			}
			keys = append(keys, s)
		}
		return keys, true, nil
	}

	return nil, true, fmt.Errorf("type not supported")
}

func (i *IndexMap) AddRow(row *Row) error {

	keys, exists, err := i.keys(row)
	if err != nil {
		return err
	}
	if !exists {
		if i.Options.Sparse {
			// Do not index
			return nil
		}
		return fmt.Errorf("field `%s` is indexed and mandatory", i.Options.Field)
	}

	i.RWmutex.Lock()
	defer i.RWmutex.Unlock()

	for _, key := range keys {
		if _, exists := i.Entries[key]; exists {
			return fmt.Errorf("%w: field '%s' with value '%s'", ErrIndexConflict, i.Options.Field, key)
		}
	}
	for _, key := range keys {
		i.Entries[key] = row
	}

	return nil
}

func (i *IndexMap) RemoveRow(row *Row) error {

	keys, _, err := i.keys(row)
	if err != nil {
		return err
	}

	i.RWmutex.Lock()
	defer i.RWmutex.Unlock()

	for _, key := range keys {
		if i.Entries[key] == row {
			delete(i.Entries, key)
		}
	}

	return nil
}

func (i *IndexMap) Get(value string) (*Row, bool) {
	i.RWmutex.RLock()
	defer i.RWmutex.RUnlock()
	row, ok := i.Entries[value]
	return row, ok
}

type IndexMapTraverse struct {
	Value string `json:"value"`
}

func (i *IndexMap) Traverse(optionsData []byte, f func(row *Row) bool) {

	options := &IndexMapTraverse{}
	err := json.Unmarshal(optionsData, options)
	if err != nil {
		return
	}

	row, ok := i.Get(options.Value)
	if !ok {
		return
	}

	f(row)
}
