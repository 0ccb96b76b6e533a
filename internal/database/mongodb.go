// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "MongoDB Database Handler"
//   Timestamp: "2026-10-18T10:45:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Mapped records to one collection keyed by content hash"
//   Principle_Applied: "Aether-Engineering-SOLID-S, Interface Segregation"
//   Quality_Check: "Unique index on value makes duplicate detection atomic"
// }}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB implements the Database interface
type MongoDB struct {
	client  *mongo.Client
	db      *mongo.Database
	strings *mongo.Collection
}

var _ Database = (*MongoDB)(nil)

// mongoRecord is the stored document shape
type mongoRecord struct {
	ID                  string    `bson:"_id"`
	Value               string    `bson:"value"`
	Length              int       `bson:"length"`
	IsPalindrome        bool      `bson:"is_palindrome"`
	UniqueCharacters    int       `bson:"unique_characters"`
	UniqueCharacterList []string  `bson:"unique_character_list"`
	WordCount           int       `bson:"word_count"`
	CreatedAt           time.Time `bson:"created_at"`
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(uri string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("无法连接到 MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("无法 ping MongoDB: %w", err)
	}

	db := client.Database("string_analyzer")
	m := &MongoDB{
		client:  client,
		db:      db,
		strings: db.Collection("strings"),
	}

	if err := m.createIndexes(); err != nil {
		return nil, fmt.Errorf("无法创建索引: %w", err)
	}

	log.Info("MongoDB 连接成功")
	return m, nil
}

// createIndexes creates necessary indexes
func (m *MongoDB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "value", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "length", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "word_count", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			},
		},
	}

	if _, err := m.strings.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("创建 strings 索引失败: %w", err)
	}

	return nil
}

// FindByValue finds a record by its exact value
func (m *MongoDB) FindByValue(ctx context.Context, value string) (*StringRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc mongoRecord
	err := m.strings.FindOne(ctx, bson.M{"value": value}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toRecord(), nil
}

// Insert inserts a new record
func (m *MongoDB) Insert(ctx context.Context, record *StringRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.strings.InsertOne(ctx, fromRecord(record))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// DeleteByValue deletes the record holding value
func (m *MongoDB) DeleteByValue(ctx context.Context, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := m.strings.DeleteOne(ctx, bson.M{"value": value})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Query returns records matching filters, oldest first
func (m *MongoDB) Query(ctx context.Context, filters query.Filters) ([]*StringRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := m.strings.Find(ctx, buildFilter(filters), opts)
	if err != nil {
		return nil, fmt.Errorf("查询字符串失败: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("读取查询结果失败: %w", err)
	}

	records := make([]*StringRecord, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toRecord())
	}
	return records, nil
}

// buildFilter compiles filters to a MongoDB filter document
func buildFilter(f query.Filters) bson.D {
	filter := bson.D{}

	if f.IsPalindrome != nil {
		filter = append(filter, bson.E{Key: "is_palindrome", Value: *f.IsPalindrome})
	}
	if f.MinLength != nil || f.MaxLength != nil {
		bounds := bson.D{}
		if f.MinLength != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *f.MinLength})
		}
		if f.MaxLength != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *f.MaxLength})
		}
		filter = append(filter, bson.E{Key: "length", Value: bounds})
	}
	if f.WordCount != nil {
		filter = append(filter, bson.E{Key: "word_count", Value: *f.WordCount})
	}
	if f.ContainsCharacter != nil {
		// an array field matches when any element equals the value
		filter = append(filter, bson.E{Key: "unique_character_list", Value: *f.ContainsCharacter})
	}

	return filter
}

func fromRecord(r *StringRecord) mongoRecord {
	return mongoRecord{
		ID:                  r.ID,
		Value:               r.Value,
		Length:              r.Properties.Length,
		IsPalindrome:        r.Properties.IsPalindrome,
		UniqueCharacters:    r.Properties.UniqueCharacters,
		UniqueCharacterList: r.Properties.UniqueCharacterList,
		WordCount:           r.Properties.WordCount,
		CreatedAt:           r.CreatedAt,
	}
}

func (d mongoRecord) toRecord() *StringRecord {
	chars := d.UniqueCharacterList
	if chars == nil {
		chars = []string{}
	}
	return &StringRecord{
		ID:    d.ID,
		Value: d.Value,
		Properties: analyzer.Properties{
			Length:                d.Length,
			IsPalindrome:          d.IsPalindrome,
			UniqueCharacters:      d.UniqueCharacters,
			UniqueCharacterList:   chars,
			WordCount:             d.WordCount,
			SHA256Hash:            d.ID,
			CharacterFrequencyMap: analyzer.CharacterFrequency(d.Value),
		},
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("断开 MongoDB 连接失败: %w", err)
	}

	log.Info("MongoDB 连接已关闭")
	return nil
}

// Ping checks if the connection is alive
func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.client.Ping(ctx, nil)
}
