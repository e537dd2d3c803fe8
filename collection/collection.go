package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/natefinch/atomic"
)

var (
	ErrClosed      = errors.New("collection is closed")
	ErrRowNotFound = errors.New("not found")
)

// Collection keeps every document in memory, in insertion order, and appends
// each change to a log file that is replayed on open.
type Collection struct {
	Filename  string // Just informative...
	file      *os.File
	fileMutex *sync.Mutex
	Rows      []*Row
	rowsMutex *sync.RWMutex
	Indexes   map[string]*collectionIndex
}

type Row struct {
	I       int // position in Rows
	Payload json.RawMessage
}

func OpenCollection(filename string) (*Collection, error) {

	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for read: %w", err)
	}
	defer f.Close()

	collection := &Collection{
		Filename:  filename,
		fileMutex: &sync.Mutex{},
		Rows:      []*Row{},
		rowsMutex: &sync.RWMutex{},
		Indexes:   map[string]*collectionIndex{},
	}

	j := json.NewDecoder(f)
	for {
		command := &Command{}
		err := j.Decode(&command)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

		err = collection.apply(command)
		if err != nil {
			log.Printf("WARNING: %s '%s': %s\n", command.Name, command.Uuid, err.Error())
		}
	}

	// Open file for append only
	collection.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for write: %w", err)
	}

	return collection, nil
}

// apply replays one command from the log. Nothing is persisted.
func (c *Collection) apply(command *Command) error {

	switch command.Name {
	case CommandInsert:
		_, err := c.addRow(command.Payload)
		return err

	case CommandRemove:
		params := struct {
			I int `json:"i"`
		}{}
		err := json.Unmarshal(command.Payload, &params)
		if err != nil {
			return err
		}
		row, err := c.rowAt(params.I)
		if err != nil {
			return err
		}
		return c.removeByRow(row, false)

	case CommandPatch:
		params := struct {
			I    int             `json:"i"`
			Diff json.RawMessage `json:"diff"`
		}{}
		err := json.Unmarshal(command.Payload, &params)
		if err != nil {
			return err
		}
		row, err := c.rowAt(params.I)
		if err != nil {
			return err
		}
		return c.patchByRow(row, params.Diff, false)

	case CommandIndex:
		options := &CreateIndexOptions{}
		err := json.Unmarshal(command.Payload, options)
		if err != nil {
			return err
		}
		return c.createIndex(options, false)

	case CommandDropIndex:
		options := &DropIndexOptions{}
		err := json.Unmarshal(command.Payload, options)
		if err != nil {
			return err
		}
		return c.dropIndex(options.Name, false)
	}

	return fmt.Errorf("unknown command '%s'", command.Name)
}

func (c *Collection) rowAt(i int) (*Row, error) {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()
	if i < 0 || i >= len(c.Rows) {
		return nil, fmt.Errorf("row %d does not exist", i)
	}
	return c.Rows[i], nil
}

func (c *Collection) persist(name string, payload interface{}) error {

	command, err := newCommand(name, payload)
	if err != nil {
		return err
	}

	c.fileMutex.Lock()
	defer c.fileMutex.Unlock()

	if c.file == nil {
		return ErrClosed
	}

	err = json.NewEncoder(c.file).Encode(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w", err)
	}

	return nil
}

func (c *Collection) addRow(payload json.RawMessage) (*Row, error) {
	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()
	return c.addRowLocked(payload)
}

// addRowLocked expects rowsMutex to be held for writing.
func (c *Collection) addRowLocked(payload json.RawMessage) (*Row, error) {

	row := &Row{
		Payload: payload,
	}

	err := indexInsert(c.Indexes, row)
	if err != nil {
		return nil, err
	}

	row.I = len(c.Rows)
	c.Rows = append(c.Rows, row)

	return row, nil
}

func (c *Collection) Insert(item interface{}) (*Row, error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}

	// Rows reach the log in the same order they reach memory.
	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	row, err := c.addRowLocked(payload)
	if err != nil {
		return nil, err
	}

	err = c.persist(CommandInsert, json.RawMessage(payload))
	if err != nil {
		indexRemove(c.Indexes, row)
		c.Rows = c.Rows[:row.I]
		row.I = -1
		return nil, err
	}

	return row, nil
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()
	return len(c.Rows)
}

// Traverse walks the rows in insertion order until f returns false.
func (c *Collection) Traverse(f func(row *Row) bool) {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()
	for _, row := range c.Rows {
		if !f(row) {
			return
		}
	}
}

func (c *Collection) FindBy(index string, value string, data interface{}) error {

	row, err := c.FindByRow(index, value)
	if err != nil {
		return err
	}

	return json.Unmarshal(row.Payload, data)
}

func (c *Collection) FindByRow(index string, value string) (*Row, error) {

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	i, ok := c.Indexes[index]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrIndexNotFound, index)
	}

	m, ok := i.Index.(*IndexMap)
	if !ok {
		return nil, fmt.Errorf("index '%s' is not a map index", index)
	}

	row, ok := m.Get(value)
	if !ok {
		return nil, fmt.Errorf("%s '%s' %w", m.Options.Field, value, ErrRowNotFound)
	}

	return row, nil
}

func (c *Collection) Remove(r *Row) error {
	return c.removeByRow(r, true)
}

// removeByRow keeps the insertion order of the remaining rows, paged readers
// rely on it. The command is logged before the lock is released so positions
// replay in the order they were applied.
func (c *Collection) removeByRow(row *Row, persist bool) error {

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	i := row.I
	if i < 0 || i >= len(c.Rows) || c.Rows[i] != row {
		return fmt.Errorf("row %d does not exist", i)
	}

	if persist {
		err := c.persist(CommandRemove, map[string]interface{}{
			"i": i,
		})
		if err != nil {
			return err
		}
	}

	err := indexRemove(c.Indexes, row)
	if err != nil {
		return fmt.Errorf("could not free index: %w", err)
	}

	c.Rows = append(c.Rows[:i], c.Rows[i+1:]...)
	for j := i; j < len(c.Rows); j++ {
		c.Rows[j].I = j
	}
	row.I = -1

	return nil
}

func (c *Collection) Patch(row *Row, patch interface{}) error {

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}

	return c.patchByRow(row, patchBytes, true)
}

func (c *Collection) patchByRow(row *Row, patch json.RawMessage, persist bool) error {

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if row.I < 0 || row.I >= len(c.Rows) || c.Rows[row.I] != row {
		return fmt.Errorf("row %d does not exist", row.I)
	}

	newPayload, err := jsonpatch.MergePatch(row.Payload, patch)
	if err != nil {
		return fmt.Errorf("cannot apply patch: %w", err)
	}

	diff, err := jsonpatch.CreateMergePatch(row.Payload, newPayload)
	if err != nil {
		return fmt.Errorf("cannot diff: %w", err)
	}

	if bytes.Equal(diff, []byte("{}")) {
		return nil
	}

	err = indexRemove(c.Indexes, row)
	if err != nil {
		return fmt.Errorf("indexRemove: %w", err)
	}

	oldPayload := row.Payload
	row.Payload = newPayload

	err = indexInsert(c.Indexes, row)
	if err != nil {
		// restore previous state
		row.Payload = oldPayload
		indexInsert(c.Indexes, row)
		return fmt.Errorf("indexInsert: %w", err)
	}

	if !persist {
		return nil
	}

	err = c.persist(CommandPatch, map[string]interface{}{
		"i":    row.I,
		"diff": json.RawMessage(diff),
	})
	if err != nil {
		indexRemove(c.Indexes, row)
		row.Payload = oldPayload
		indexInsert(c.Indexes, row)
		return err
	}

	return nil
}

// Compact rewrites the log with one command per live document and index, and
// swaps it in atomically. Writers wait until the new file is in place.
func (c *Collection) Compact() error {

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	buffer := &bytes.Buffer{}
	e := json.NewEncoder(buffer)
	for _, row := range c.Rows {
		command, err := newCommand(CommandInsert, row.Payload)
		if err != nil {
			return err
		}
		e.Encode(command)
	}
	for _, index := range c.Indexes {
		command, err := newCommand(CommandIndex, index.Options)
		if err != nil {
			return err
		}
		e.Encode(command)
	}

	c.fileMutex.Lock()
	defer c.fileMutex.Unlock()

	if c.file == nil {
		return ErrClosed
	}

	err := atomic.WriteFile(c.Filename, buffer)
	if err != nil {
		return fmt.Errorf("write compacted file: %w", err)
	}

	c.file.Close()
	c.file, err = os.OpenFile(c.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("reopen file for write: %w", err)
	}

	return nil
}

func (c *Collection) IsClosed() bool {
	c.fileMutex.Lock()
	defer c.fileMutex.Unlock()
	return c.file == nil
}

func (c *Collection) Close() error {
	c.fileMutex.Lock()
	defer c.fileMutex.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

func (c *Collection) Drop() error {
	err := c.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	err = os.Remove(c.Filename)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
