// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "Structured String Filters"
//   Timestamp: "2026-10-18T09:40:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Derived the five list predicates and their constraints"
//   Principle_Applied: "Aether-Engineering-SOLID-S"
//   Quality_Check: "Every invalid predicate is reported, not only the first"
// }}

package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/errs"
	"go.uber.org/multierr"
)

// Query parameter names
const (
	ParamIsPalindrome      = "is_palindrome"
	ParamMinLength         = "min_length"
	ParamMaxLength         = "max_length"
	ParamWordCount         = "word_count"
	ParamContainsCharacter = "contains_character"
)

// Filters is a set of optional predicates combined with AND.
// A nil field places no constraint.
type Filters struct {
	IsPalindrome      *bool   `json:"is_palindrome"`
	MinLength         *int    `json:"min_length"`
	MaxLength         *int    `json:"max_length"`
	WordCount         *int    `json:"word_count"`
	ContainsCharacter *string `json:"contains_character"`
}

// ParseFilters reads filters from query parameters. Absent or empty
// parameters are left unset.
func ParseFilters(params url.Values) (Filters, error) {
	var f Filters
	var errList error

	if raw := strings.TrimSpace(params.Get(ParamIsPalindrome)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errList = multierr.Append(errList, fmt.Errorf("%s must be a boolean, got %q", ParamIsPalindrome, raw))
		} else {
			f.IsPalindrome = &v
		}
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{ParamMinLength, &f.MinLength},
		{ParamMaxLength, &f.MaxLength},
		{ParamWordCount, &f.WordCount},
	} {
		raw := strings.TrimSpace(params.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errList = multierr.Append(errList, fmt.Errorf("%s must be a non-negative integer, got %q", p.name, raw))
			continue
		}
		*p.dst = &v
	}

	if params.Has(ParamContainsCharacter) {
		c := params.Get(ParamContainsCharacter)
		f.ContainsCharacter = &c
	}

	errList = multierr.Append(errList, f.violations())
	if errList != nil {
		return Filters{}, invalid(errList)
	}
	return f, nil
}

// Validate checks the semantic constraints of already typed filters
func (f Filters) Validate() error {
	if err := f.violations(); err != nil {
		return invalid(err)
	}
	return nil
}

func (f Filters) violations() error {
	var errList error
	for name, v := range map[string]*int{
		ParamMinLength: f.MinLength,
		ParamMaxLength: f.MaxLength,
		ParamWordCount: f.WordCount,
	} {
		if v != nil && *v < 0 {
			errList = multierr.Append(errList, fmt.Errorf("%s must be a non-negative integer, got %d", name, *v))
		}
	}
	if f.ContainsCharacter != nil && utf8.RuneCountInString(*f.ContainsCharacter) != 1 {
		errList = multierr.Append(errList, fmt.Errorf("%s must be exactly one character, got %q", ParamContainsCharacter, *f.ContainsCharacter))
	}
	return errList
}

func invalid(err error) error {
	var details []string
	for _, e := range multierr.Errors(err) {
		details = append(details, e.Error())
	}
	sort.Strings(details)
	return errs.Validation("invalid query parameters", details...)
}

// Match reports whether a string and its metrics satisfy every predicate
func (f Filters) Match(value string, p analyzer.Properties) bool {
	if f.IsPalindrome != nil && p.IsPalindrome != *f.IsPalindrome {
		return false
	}
	if f.MinLength != nil && p.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && p.Length > *f.MaxLength {
		return false
	}
	if f.WordCount != nil && p.WordCount != *f.WordCount {
		return false
	}
	if f.ContainsCharacter != nil && !strings.Contains(value, *f.ContainsCharacter) {
		return false
	}
	return true
}

// IsEmpty reports whether no predicate is set
func (f Filters) IsEmpty() bool {
	return f.IsPalindrome == nil && f.MinLength == nil && f.MaxLength == nil &&
		f.WordCount == nil && f.ContainsCharacter == nil
}

// Applied echoes every predicate, unset ones as nil
func (f Filters) Applied() map[string]interface{} {
	return map[string]interface{}{
		ParamIsPalindrome:      f.IsPalindrome,
		ParamMinLength:         f.MinLength,
		ParamMaxLength:         f.MaxLength,
		ParamWordCount:         f.WordCount,
		ParamContainsCharacter: f.ContainsCharacter,
	}
}

// Set returns only the predicates that are set
func (f Filters) Set() map[string]interface{} {
	out := make(map[string]interface{})
	if f.IsPalindrome != nil {
		out[ParamIsPalindrome] = *f.IsPalindrome
	}
	if f.MinLength != nil {
		out[ParamMinLength] = *f.MinLength
	}
	if f.MaxLength != nil {
		out[ParamMaxLength] = *f.MaxLength
	}
	if f.WordCount != nil {
		out[ParamWordCount] = *f.WordCount
	}
	if f.ContainsCharacter != nil {
		out[ParamContainsCharacter] = *f.ContainsCharacter
	}
	return out
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
