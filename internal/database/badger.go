package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	log "github.com/sirupsen/logrus"
)

// Key format: str/<sha256 of value>
var recordPrefix = []byte("str/")

// Badger implements the Database interface on an embedded key-value store.
// Since the key is the content hash, value uniqueness and id uniqueness are the same check.
type Badger struct {
	db *badger.DB
}

var _ Database = (*Badger)(nil)

// badgerRecord is the stored value shape
type badgerRecord struct {
	Value               string    `json:"value"`
	Length              int       `json:"length"`
	IsPalindrome        bool      `json:"is_palindrome"`
	UniqueCharacters    int       `json:"unique_characters"`
	UniqueCharacterList []string  `json:"unique_character_list"`
	WordCount           int       `json:"word_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewBadger opens a Badger store at dir. An empty dir opens an in-memory store.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(log.WithField("component", "badger")).
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("无法打开 Badger 数据库: %w", err)
	}

	log.Info("Badger 打开成功")
	return &Badger{db: db}, nil
}

func recordKey(id string) []byte {
	return append(append([]byte{}, recordPrefix...), id...)
}

// FindByValue finds a record by its exact value
func (b *Badger) FindByValue(ctx context.Context, value string) (*StringRecord, error) {
	id := analyzer.ContentHash(value)

	var rec *StringRecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = decodeBadgerRecord(id, val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Insert stores record unless its key exists
func (b *Badger) Insert(ctx context.Context, record *StringRecord) error {
	data, err := json.Marshal(badgerRecord{
		Value:               record.Value,
		Length:              record.Properties.Length,
		IsPalindrome:        record.Properties.IsPalindrome,
		UniqueCharacters:    record.Properties.UniqueCharacters,
		UniqueCharacterList: record.Properties.UniqueCharacterList,
		WordCount:           record.Properties.WordCount,
		CreatedAt:           record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("无法序列化记录: %w", err)
	}

	key := recordKey(record.ID)
	err = b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	// a concurrent writer committed the same key first
	if errors.Is(err, badger.ErrConflict) {
		return ErrDuplicate
	}
	return err
}

// DeleteByValue removes the record holding value
func (b *Badger) DeleteByValue(ctx context.Context, value string) (bool, error) {
	key := recordKey(analyzer.ContentHash(value))

	deleted := false
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		deleted = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Query scans every record and keeps the matching ones, oldest first
func (b *Badger) Query(ctx context.Context, filters query.Filters) ([]*StringRecord, error) {
	records := make([]*StringRecord, 0)

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := string(item.Key()[len(recordPrefix):])
			err := item.Value(func(val []byte) error {
				rec, err := decodeBadgerRecord(id, val)
				if err != nil {
					return err
				}
				if filters.Match(rec.Value, rec.Properties) {
					records = append(records, rec)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询字符串失败: %w", err)
	}

	sortRecords(records)
	return records, nil
}

func decodeBadgerRecord(id string, val []byte) (*StringRecord, error) {
	var doc badgerRecord
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, fmt.Errorf("无法解析记录 %s: %w", id, err)
	}
	chars := doc.UniqueCharacterList
	if chars == nil {
		chars = []string{}
	}
	return &StringRecord{
		ID:    id,
		Value: doc.Value,
		Properties: analyzer.Properties{
			Length:                doc.Length,
			IsPalindrome:          doc.IsPalindrome,
			UniqueCharacters:      doc.UniqueCharacters,
			UniqueCharacterList:   chars,
			WordCount:             doc.WordCount,
			SHA256Hash:            id,
			CharacterFrequencyMap: analyzer.CharacterFrequency(doc.Value),
		},
		CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

// Disconnect closes the Badger store
func (b *Badger) Disconnect() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("关闭 Badger 失败: %w", err)
	}

	log.Info("Badger 已关闭")
	return nil
}

// Ping reports whether the store is open
func (b *Badger) Ping(ctx context.Context) error {
	if b.db.IsClosed() {
		return errors.New("Badger 已关闭")
	}
	return nil
}
