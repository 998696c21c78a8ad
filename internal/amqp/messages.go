package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ImportRequest asks the worker to load a dataset file into the store.
// Path must be readable by the worker process.
type ImportRequest struct {
	Path        string    `json:"path"`
	Source      string    `json:"source,omitempty"` // defaults to the file name
	Strict      bool      `json:"strict,omitempty"` // refuse the file if any row is rejected
	RequestedAt time.Time `json:"requested_at"`
}

// NewImportRequest creates a request stamped with the current time.
func NewImportRequest(path, source string, strict bool) *ImportRequest {
	return &ImportRequest{
		Path:        path,
		Source:      source,
		Strict:      strict,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestFromJSON decodes a message and checks that it names a file.
func ImportRequestFromJSON(data []byte) (*ImportRequest, error) {
	var msg ImportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Path == "" {
		return nil, errors.New("import request without path")
	}
	return &msg, nil
}
