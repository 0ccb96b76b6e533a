// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "String Analysis Service"
//   Timestamp: "2026-10-18T12:30:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Combined analyzer, store, filter parser and notifications behind five operations"
//   Principle_Applied: "Aether-Engineering-SOLID-S, Dependency Inversion"
//   Quality_Check: "Every failure leaves as a typed error kind"
// }}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/imhuimie/string-analyzer-go/internal/errs"
	"github.com/imhuimie/string-analyzer-go/internal/nlquery"
	"github.com/imhuimie/string-analyzer-go/internal/notifier"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	log "github.com/sirupsen/logrus"
)

// Publisher receives record lifecycle events
type Publisher interface {
	Publish(event notifier.Event)
}

// ListResult is the answer to a structured list request
type ListResult struct {
	Data           []*database.StringRecord `json:"data"`
	Count          int                      `json:"count"`
	FiltersApplied map[string]interface{}   `json:"filters_applied"`
}

// NaturalResult is the answer to a natural language list request
type NaturalResult struct {
	Data             []*database.StringRecord `json:"data"`
	Count            int                      `json:"count"`
	InterpretedQuery *nlquery.Interpretation  `json:"interpreted_query"`
}

// Service implements the string analysis operations
type Service struct {
	db        database.Database
	parser    *nlquery.Parser
	publisher Publisher
	now       func() time.Time
}

// New creates a service. publisher may be nil.
func New(db database.Database, parser *nlquery.Parser, publisher Publisher) *Service {
	if parser == nil {
		parser = nlquery.NewParser(nil)
	}
	return &Service{
		db:        db,
		parser:    parser,
		publisher: publisher,
		now: func() time.Time {
			// millisecond precision survives every backend unchanged
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// Analyze computes and stores the metrics of a previously unseen value
func (s *Service) Analyze(ctx context.Context, value string) (*database.StringRecord, error) {
	if value == "" {
		return nil, errs.Validation("value must be a non-empty string")
	}

	existing, err := s.db.FindByValue(ctx, value)
	if err != nil {
		return nil, errs.Internal("failed to look up string", err)
	}
	if existing != nil {
		return nil, errs.Conflict("string already exists in the system")
	}

	record := database.NewStringRecord(value, s.now())
	if err := s.db.Insert(ctx, record); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, errs.Conflict("string already exists in the system")
		}
		return nil, errs.Internal("failed to store string", err)
	}

	log.WithField("id", record.ID).Infof("已分析新字符串，长度 %d", record.Properties.Length)
	s.publish(notifier.EventCreated, record)
	return record, nil
}

// Get returns the stored record for value
func (s *Service) Get(ctx context.Context, value string) (*database.StringRecord, error) {
	record, err := s.db.FindByValue(ctx, value)
	if err != nil {
		return nil, errs.Internal("failed to look up string", err)
	}
	if record == nil {
		return nil, errs.NotFound("string does not exist in the system")
	}
	return record, nil
}

// List returns every record matching filters
func (s *Service) List(ctx context.Context, filters query.Filters) (*ListResult, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	records, err := s.query(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Data:           records,
		Count:          len(records),
		FiltersApplied: filters.Applied(),
	}, nil
}

// ListNatural derives filters from a free text query and lists the matches
func (s *Service) ListNatural(ctx context.Context, q string) (*NaturalResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, errs.Validation("query parameter is required")
	}

	interpretation, err := s.parser.Parse(ctx, q)
	if err != nil {
		return nil, err
	}

	records, err := s.query(ctx, interpretation.Filters)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"source":  interpretation.Source,
		"filters": interpretation.Filters.Set(),
	}).Debugf("自然语言查询 %q 命中 %d 条", q, len(records))

	return &NaturalResult{
		Data:             records,
		Count:            len(records),
		InterpretedQuery: interpretation,
	}, nil
}

// Delete removes the record for value
func (s *Service) Delete(ctx context.Context, value string) error {
	record, err := s.db.FindByValue(ctx, value)
	if err != nil {
		return errs.Internal("failed to look up string", err)
	}

	removed, err := s.db.DeleteByValue(ctx, value)
	if err != nil {
		return errs.Internal("failed to delete string", err)
	}
	if !removed {
		return errs.NotFound("string does not exist in the system")
	}

	// record is nil only when it was inserted between the lookup and the delete
	if record != nil {
		log.WithField("id", record.ID).Info("已删除字符串")
		s.publish(notifier.EventDeleted, record)
	}
	return nil
}

func (s *Service) query(ctx context.Context, filters query.Filters) ([]*database.StringRecord, error) {
	records, err := s.db.Query(ctx, filters)
	if err != nil {
		return nil, errs.Internal("failed to query strings", err)
	}
	if records == nil {
		records = []*database.StringRecord{}
	}
	return records, nil
}

func (s *Service) publish(eventType notifier.EventType, record *database.StringRecord) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(notifier.Event{Type: eventType, Record: record, At: s.now()})
}
