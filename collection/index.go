package collection

import (
	"errors"
	"fmt"
	"sort"
)

const (
	IndexTypeMap   = "map"
	IndexTypeBTree = "btree"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexConflict = errors.New("index conflict")
)

// Index is implemented by every kind of index a collection can hold.
type Index interface {
	AddRow(row *Row) error
	RemoveRow(row *Row) error
	Traverse(options []byte, f func(row *Row) bool)
}

type collectionIndex struct {
	Index
	Options *CreateIndexOptions
}

type CreateIndexOptions struct {
	Name string `json:"name"`
	Type string `json:"type"`

	// map
	Field string `json:"field,omitempty"`

	// btree
	Fields []string `json:"fields,omitempty"`
	Unique bool     `json:"unique,omitempty"`

	Sparse bool `json:"sparse,omitempty"`
}

type DropIndexOptions struct {
	Name string `json:"name"`
}

func (o *CreateIndexOptions) newIndex() (Index, error) {
	switch o.Type {
	case IndexTypeMap, "":
		if o.Field == "" {
			return nil, fmt.Errorf("map index needs a field")
		}
		o.Type = IndexTypeMap
		return NewIndexMap(&IndexMapOptions{
			Field:  o.Field,
			Sparse: o.Sparse,
		}), nil
	case IndexTypeBTree:
		if len(o.Fields) == 0 {
			return nil, fmt.Errorf("btree index needs at least one field")
		}
		return NewIndexBTree(&IndexBTreeOptions{
			Fields: o.Fields,
			Sparse: o.Sparse,
			Unique: o.Unique,
		}), nil
	}
	return nil, fmt.Errorf("unknown index type '%s'", o.Type)
}

// Index creates an index and fills it with the current rows.
func (c *Collection) Index(options *CreateIndexOptions) error {
	return c.createIndex(options, true)
}

func (c *Collection) createIndex(options *CreateIndexOptions, persist bool) error {

	if options.Name == "" {
		options.Name = options.Field
	}
	if options.Name == "" {
		return fmt.Errorf("index name is mandatory")
	}

	index, err := options.newIndex()
	if err != nil {
		return err
	}

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if _, exists := c.Indexes[options.Name]; exists {
		return fmt.Errorf("index '%s' already exists", options.Name)
	}

	for _, row := range c.Rows {
		err := index.AddRow(row)
		if err != nil {
			return fmt.Errorf("index row: %w, data: %s", err, string(row.Payload))
		}
	}

	if persist {
		err = c.persist(CommandIndex, options)
		if err != nil {
			return err
		}
	}

	c.Indexes[options.Name] = &collectionIndex{
		Index:   index,
		Options: options,
	}

	return nil
}

func (c *Collection) DropIndex(name string) error {
	return c.dropIndex(name, true)
}

func (c *Collection) dropIndex(name string, persist bool) error {

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	_, exists := c.Indexes[name]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrIndexNotFound, name)
	}

	if persist {
		err := c.persist(CommandDropIndex, &DropIndexOptions{Name: name})
		if err != nil {
			return err
		}
	}

	delete(c.Indexes, name)

	return nil
}

// ListIndexes returns the options of every index sorted by name.
func (c *Collection) ListIndexes() []*CreateIndexOptions {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	result := []*CreateIndexOptions{}
	for _, index := range c.Indexes {
		result = append(result, index.Options)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// indexInsert adds row to every index, undoing the work already done if one
// of them refuses it.
func indexInsert(indexes map[string]*collectionIndex, row *Row) error {
	done := []Index{}
	for name, index := range indexes {
		err := index.AddRow(row)
		if err != nil {
			for _, d := range done {
				d.RemoveRow(row)
			}
			return fmt.Errorf("index '%s': %w", name, err)
		}
		done = append(done, index.Index)
	}
	return nil
}

func indexRemove(indexes map[string]*collectionIndex, row *Row) error {
	for name, index := range indexes {
		err := index.RemoveRow(row)
		if err != nil {
			return fmt.Errorf("index '%s': %w", name, err)
		}
	}
	return nil
}
