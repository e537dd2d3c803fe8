package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CommandInsert    = "insert"
	CommandRemove    = "remove"
	CommandPatch     = "patch"
	CommandIndex     = "index"
	CommandDropIndex = "drop_index"
)

// Command is one line of the collection log.
type Command struct {
	Name      string          `json:"name"`
	Uuid      string          `json:"uuid"`
	Timestamp int64           `json:"timestamp"`
	StartByte int64           `json:"start_byte"`
	Payload   json.RawMessage `json:"payload"`
}

func newCommand(name string, payload interface{}) (*Command, error) {

	raw, ok := payload.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("json encode payload: %w", err)
		}
	}

	return &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		StartByte: 0,
		Payload:   raw,
	}, nil
}
