// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Database Factory Pattern"
//   Timestamp: "2026-10-18T10:22:00Z"
//   Authoring_Role: "AR"
//   Analysis_Performed: "Added Badger and in-memory stores next to SQLite and MongoDB"
//   Principle_Applied: "Aether-Engineering-SOLID-O (Open/Closed Principle)"
//   Quality_Check: "Supports easy addition of new database types"
// }}

package database

import (
	"fmt"
	"strings"
)

// DatabaseType represents the type of database to use
type DatabaseType string

const (
	TypeMongoDB DatabaseType = "mongodb"
	TypeSQLite  DatabaseType = "sqlite"
	TypeBadger  DatabaseType = "badger"
	TypeMemory  DatabaseType = "memory"
)

// NewDatabase creates a new database instance based on the provided type and connection string
func NewDatabase(dbType DatabaseType, connectionString string) (Database, error) {
	switch strings.ToLower(string(dbType)) {
	case string(TypeMongoDB):
		return NewMongoDB(connectionString)
	case string(TypeSQLite):
		return NewSQLite(connectionString)
	case string(TypeBadger):
		return NewBadger(connectionString)
	case string(TypeMemory):
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", dbType)
	}
}
