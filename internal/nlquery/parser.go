// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "Natural Language Filter Parser"
//   Timestamp: "2026-10-18T11:10:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Listed the English phrasings the list endpoint understands"
//   Principle_Applied: "Aether-Engineering-SOLID-O, Explicit Rule Ordering"
//   Quality_Check: "Rules run in a fixed order, later rules overwrite earlier keys"
// }}

package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/imhuimie/string-analyzer-go/internal/errs"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	log "github.com/sirupsen/logrus"
)

// Rule recognizes one phrasing and writes the filters it implies.
// Apply receives the lower-cased query and reports whether it matched.
type Rule struct {
	Name  string
	Apply func(q string, f *query.Filters) bool
}

var (
	longerThanPattern = regexp.MustCompile(`longer than (\d+) characters?`)
	letterPattern     = regexp.MustCompile(`containing the letter ([a-z])\b`)
)

// DefaultRules is evaluated top to bottom. "contain the first vowel" comes
// after "containing the letter", so it wins when both match.
var DefaultRules = []Rule{
	{
		Name: "single word",
		Apply: func(q string, f *query.Filters) bool {
			if !strings.Contains(q, "single word") {
				return false
			}
			f.WordCount = query.Int(1)
			return true
		},
	},
	{
		Name: "palindromic",
		Apply: func(q string, f *query.Filters) bool {
			if !strings.Contains(q, "palindromic") {
				return false
			}
			f.IsPalindrome = query.Bool(true)
			return true
		},
	},
	{
		Name: "longer than",
		Apply: func(q string, f *query.Filters) bool {
			m := longerThanPattern.FindStringSubmatch(q)
			if m == nil {
				return false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil || n == math.MaxInt {
				return false
			}
			// strictly longer than n
			f.MinLength = query.Int(n + 1)
			return true
		},
	},
	{
		Name: "containing the letter",
		Apply: func(q string, f *query.Filters) bool {
			m := letterPattern.FindStringSubmatch(q)
			if m == nil {
				return false
			}
			f.ContainsCharacter = query.String(m[1])
			return true
		},
	},
	{
		Name: "first vowel",
		Apply: func(q string, f *query.Filters) bool {
			if !strings.Contains(q, "contain the first vowel") {
				return false
			}
			f.ContainsCharacter = query.String("a")
			return true
		},
	},
}

// Interpretation is the parser's result, echoed back to callers
type Interpretation struct {
	Original string
	Filters  query.Filters
	Source   string // "rules" or "model"
}

// MarshalJSON echoes the raw query and the derived predicates only
func (i Interpretation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Original      string                 `json:"original"`
		ParsedFilters map[string]interface{} `json:"parsed_filters"`
	}{i.Original, i.Filters.Set()})
}

// Interpreter translates queries the rules do not recognize
type Interpreter interface {
	Interpret(ctx context.Context, q string) (query.Filters, error)
}

// Parser turns free text into structured filters
type Parser struct {
	rules    []Rule
	fallback Interpreter
}

// NewParser creates a parser over DefaultRules. fallback may be nil.
func NewParser(fallback Interpreter) *Parser {
	return &Parser{rules: DefaultRules, fallback: fallback}
}

// Parse derives filters from q
func (p *Parser) Parse(ctx context.Context, q string) (*Interpretation, error) {
	lower := strings.ToLower(q)

	var f query.Filters
	matched := false
	for _, rule := range p.rules {
		if rule.Apply(lower, &f) {
			log.Debugf("自然语言查询 %q 匹配规则 %s", q, rule.Name)
			matched = true
		}
	}

	source := "rules"
	if !matched {
		if p.fallback == nil {
			return nil, errs.ParseFailure("unable to parse natural language query")
		}

		derived, err := p.fallback.Interpret(ctx, q)
		if err != nil {
			log.Warnf("AI 解析查询失败: %v", err)
			return nil, errs.ParseFailure("unable to parse natural language query")
		}
		if derived.IsEmpty() {
			return nil, errs.ParseFailure("unable to parse natural language query")
		}
		if derived.ContainsCharacter != nil && len([]rune(*derived.ContainsCharacter)) != 1 {
			return nil, errs.ParseFailure("unable to parse natural language query")
		}
		f = derived
		source = "model"
	}

	if err := checkConflicts(f); err != nil {
		return nil, err
	}

	return &Interpretation{Original: q, Filters: f, Source: source}, nil
}

func checkConflicts(f query.Filters) error {
	var details []string
	if f.MinLength != nil && *f.MinLength < 0 {
		details = append(details, fmt.Sprintf("min_length cannot be negative, got %d", *f.MinLength))
	}
	if f.MaxLength != nil && *f.MaxLength < 0 {
		details = append(details, fmt.Sprintf("max_length cannot be negative, got %d", *f.MaxLength))
	}
	if f.WordCount != nil && *f.WordCount < 0 {
		details = append(details, fmt.Sprintf("word_count cannot be negative, got %d", *f.WordCount))
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		details = append(details, fmt.Sprintf("min_length %d is greater than max_length %d", *f.MinLength, *f.MaxLength))
	}
	if len(details) > 0 {
		return errs.ConflictingFilters("query parsed but resulted in conflicting filters", details...)
	}
	return nil
}
