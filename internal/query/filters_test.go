package query

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters_AllSet(t *testing.T) {
	params := url.Values{
		"is_palindrome":      {"true"},
		"min_length":         {"2"},
		"max_length":         {"10"},
		"word_count":         {"1"},
		"contains_character": {"a"},
	}

	f, err := ParseFilters(params)
	require.NoError(t, err)

	assert.Equal(t, Filters{
		IsPalindrome:      Bool(true),
		MinLength:         Int(2),
		MaxLength:         Int(10),
		WordCount:         Int(1),
		ContainsCharacter: String("a"),
	}, f)
}

func TestParseFilters_NoneSet(t *testing.T) {
	f, err := ParseFilters(url.Values{})
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestParseFilters_ReportsEveryViolation(t *testing.T) {
	params := url.Values{
		"is_palindrome":      {"maybe"},
		"min_length":         {"-1"},
		"max_length":         {"ten"},
		"word_count":         {"1.5"},
		"contains_character": {"ab"},
	}

	_, err := ParseFilters(params)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.Equal(t, []string{
		`contains_character must be exactly one character, got "ab"`,
		`is_palindrome must be a boolean, got "maybe"`,
		`max_length must be a non-negative integer, got "ten"`,
		`min_length must be a non-negative integer, got -1`,
		`word_count must be a non-negative integer, got "1.5"`,
	}, e.Details)
}

func TestParseFilters_EmptyCharacterRejected(t *testing.T) {
	_, err := ParseFilters(url.Values{"contains_character": {""}})
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestParseFilters_MultiByteCharacterAccepted(t *testing.T) {
	f, err := ParseFilters(url.Values{"contains_character": {"é"}})
	require.NoError(t, err)
	assert.Equal(t, "é", *f.ContainsCharacter)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Filters{MinLength: Int(0)}.Validate())
	assert.True(t, errs.Is(Filters{WordCount: Int(-3)}.Validate(), errs.KindValidation))
}

func TestMatch(t *testing.T) {
	value := "racecar"
	props := analyzer.Analyze(value)

	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"empty filters", Filters{}, true},
		{"palindrome", Filters{IsPalindrome: Bool(true)}, true},
		{"not palindrome", Filters{IsPalindrome: Bool(false)}, false},
		{"exact length window", Filters{MinLength: Int(7), MaxLength: Int(7)}, true},
		{"too short", Filters{MinLength: Int(8)}, false},
		{"too long", Filters{MaxLength: Int(6)}, false},
		{"word count", Filters{WordCount: Int(1)}, true},
		{"wrong word count", Filters{WordCount: Int(2)}, false},
		{"contains", Filters{ContainsCharacter: String("e")}, true},
		{"contains is case sensitive", Filters{ContainsCharacter: String("R")}, false},
		{"and of all", Filters{IsPalindrome: Bool(true), WordCount: Int(1), ContainsCharacter: String("c")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Match(value, props))
		})
	}
}

func TestMatch_LengthBoundsSelectExactLength(t *testing.T) {
	f := Filters{MinLength: Int(5), MaxLength: Int(5)}
	for _, v := range []string{"abcd", "abcde", "abcdef", "hello", "hi"} {
		got := f.Match(v, analyzer.Analyze(v))
		assert.Equal(t, analyzer.Length(v) == 5, got, v)
	}
}

func TestApplied_EchoesUnsetAsNull(t *testing.T) {
	data, err := json.Marshal(Filters{MinLength: Int(3)}.Applied())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"is_palindrome": null,
		"min_length": 3,
		"max_length": null,
		"word_count": null,
		"contains_character": null
	}`, string(data))
}

func TestSet_OnlySetPredicates(t *testing.T) {
	set := Filters{WordCount: Int(1), IsPalindrome: Bool(true)}.Set()
	assert.Equal(t, map[string]interface{}{"word_count": 1, "is_palindrome": true}, set)
}
