// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "SQLite Database Implementation"
//   Timestamp: "2026-10-18T10:30:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Single string_records table with metric columns indexed for list filters"
//   Principle_Applied: "Aether-Engineering-SOLID-S, Interface Implementation"
//   Quality_Check: "Uniqueness enforced by constraints, all filter values parameterized"
// }}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	"github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// SQLite implements the Database interface
type SQLite struct {
	db *sql.DB
}

// Ensure SQLite implements Database interface
var _ Database = (*SQLite)(nil)

// createdAtLayout is fixed width so ORDER BY created_at sorts chronologically
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

const recordColumns = `id, value, length, is_palindrome, unique_characters,
	unique_character_list, word_count, created_at`

// NewSQLite creates a new SQLite connection
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("无法创建数据目录: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开 SQLite 数据库: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法 ping SQLite: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法创建表: %w", err)
	}

	log.Info("SQLite 连接成功")
	return s, nil
}

// createTables creates necessary tables and indexes
func (s *SQLite) createTables() error {
	queries := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS string_records (
			id TEXT PRIMARY KEY,
			value TEXT NOT NULL UNIQUE,
			length INTEGER NOT NULL,
			is_palindrome INTEGER NOT NULL,
			unique_characters INTEGER NOT NULL,
			unique_character_list TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_string_records_length ON string_records(length)`,
		`CREATE INDEX IF NOT EXISTS idx_string_records_word_count ON string_records(word_count)`,
		`CREATE INDEX IF NOT EXISTS idx_string_records_is_palindrome ON string_records(is_palindrome)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("执行查询失败: %w", err)
		}
	}

	return nil
}

// FindByValue finds a record by its exact value
func (s *SQLite) FindByValue(ctx context.Context, value string) (*StringRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM string_records WHERE value = ?`, value)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Insert inserts a new record
func (s *SQLite) Insert(ctx context.Context, record *StringRecord) error {
	chars, err := json.Marshal(record.Properties.UniqueCharacterList)
	if err != nil {
		return fmt.Errorf("无法序列化字符列表: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO string_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Value,
		record.Properties.Length,
		record.Properties.IsPalindrome,
		record.Properties.UniqueCharacters,
		string(chars),
		record.Properties.WordCount,
		record.CreatedAt.UTC().Format(createdAtLayout),
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrDuplicate
	}
	return err
}

// DeleteByValue deletes the record holding value
func (s *SQLite) DeleteByValue(ctx context.Context, value string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM string_records WHERE value = ?`, value)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Query returns records matching filters, oldest first
func (s *SQLite) Query(ctx context.Context, filters query.Filters) ([]*StringRecord, error) {
	where, args := buildWhere(filters)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM string_records`+where+` ORDER BY created_at ASC, id ASC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("查询字符串失败: %w", err)
	}
	defer rows.Close()

	records := make([]*StringRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// buildWhere compiles filters to a WHERE clause with ? placeholders
func buildWhere(f query.Filters) (string, []any) {
	var conds []string
	var args []any

	if f.IsPalindrome != nil {
		conds = append(conds, "is_palindrome = ?")
		args = append(args, *f.IsPalindrome)
	}
	if f.MinLength != nil {
		conds = append(conds, "length >= ?")
		args = append(args, *f.MinLength)
	}
	if f.MaxLength != nil {
		conds = append(conds, "length <= ?")
		args = append(args, *f.MaxLength)
	}
	if f.WordCount != nil {
		conds = append(conds, "word_count = ?")
		args = append(args, *f.WordCount)
	}
	if f.ContainsCharacter != nil {
		// instr is case-sensitive, LIKE is not
		conds = append(conds, "instr(value, ?) > 0")
		args = append(args, *f.ContainsCharacter)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*StringRecord, error) {
	var rec StringRecord
	var chars, createdAt string

	err := row.Scan(
		&rec.ID,
		&rec.Value,
		&rec.Properties.Length,
		&rec.Properties.IsPalindrome,
		&rec.Properties.UniqueCharacters,
		&chars,
		&rec.Properties.WordCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(chars), &rec.Properties.UniqueCharacterList); err != nil {
		return nil, fmt.Errorf("无法解析字符列表: %w", err)
	}
	rec.CreatedAt, err = time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("无法解析创建时间: %w", err)
	}
	rec.Properties.SHA256Hash = rec.ID
	rec.Properties.CharacterFrequencyMap = analyzer.CharacterFrequency(rec.Value)

	return &rec, nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("断开 SQLite 连接失败: %w", err)
	}

	log.Info("SQLite 连接已关闭")
	return nil
}

// Ping checks if the connection is alive
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
