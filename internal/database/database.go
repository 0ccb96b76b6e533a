// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Database Interface Abstraction"
//   Timestamp: "2026-10-18T10:20:00Z"
//   Authoring_Role: "AR"
//   Analysis_Performed: "Reduced the store contract to the four operations analyzed strings need"
//   Principle_Applied: "Aether-Engineering-SOLID-I (Interface Segregation)"
//   Quality_Check: "Interface supports SQLite, MongoDB, Badger and in-memory implementations"
// }}

package database

import (
	"context"
	"errors"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/query"
)

// ErrDuplicate is returned by Insert when the value or its id is already stored
var ErrDuplicate = errors.New("字符串已存在")

// Database defines the interface for database operations
type Database interface {
	// FindByValue returns (nil, nil) when no record holds value
	FindByValue(ctx context.Context, value string) (*StringRecord, error)
	// Insert fails with ErrDuplicate when the value is already stored.
	// The check is atomic with the write.
	Insert(ctx context.Context, record *StringRecord) error
	// DeleteByValue reports whether a record was removed
	DeleteByValue(ctx context.Context, value string) (bool, error)
	// Query returns records matching every set filter, oldest first
	Query(ctx context.Context, filters query.Filters) ([]*StringRecord, error)

	// Connection management
	Disconnect() error
	Ping(ctx context.Context) error
}

// StringRecord represents one analyzed string
type StringRecord struct {
	ID         string              `json:"id"`
	Value      string              `json:"value"`
	Properties analyzer.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewStringRecord analyzes value and stamps the record with createdAt
func NewStringRecord(value string, createdAt time.Time) *StringRecord {
	props := analyzer.Analyze(value)
	return &StringRecord{
		ID:         props.SHA256Hash,
		Value:      value,
		Properties: props,
		CreatedAt:  createdAt.UTC(),
	}
}
