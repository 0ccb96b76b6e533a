// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "String Metrics Analyzer"
//   Timestamp: "2026-10-18T09:20:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Defined the metrics bundle computed for every stored string"
//   Principle_Applied: "Aether-Engineering-SOLID-S, Pure Functions"
//   Quality_Check: "All functions are total and safe for concurrent use"
// }}

package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Properties is the metrics bundle of one string
type Properties struct {
	Length                int       `json:"length" yaml:"length"`
	IsPalindrome          bool      `json:"is_palindrome" yaml:"is_palindrome"`
	UniqueCharacters      int       `json:"unique_characters" yaml:"unique_characters"`
	UniqueCharacterList   []string  `json:"unique_character_list" yaml:"unique_character_list"`
	WordCount             int       `json:"word_count" yaml:"word_count"`
	SHA256Hash            string    `json:"sha256_hash" yaml:"sha256_hash"`
	CharacterFrequencyMap Frequency `json:"character_frequency_map" yaml:"character_frequency_map"`
}

// Analyze computes every metric of text
func Analyze(text string) Properties {
	freq := CharacterFrequency(text)

	return Properties{
		Length:                Length(text),
		IsPalindrome:          IsPalindrome(text),
		UniqueCharacters:      len(freq),
		UniqueCharacterList:   freq.Characters(),
		WordCount:             WordCount(text),
		SHA256Hash:            ContentHash(text),
		CharacterFrequencyMap: freq,
	}
}

// WordCount returns the number of whitespace separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Length returns the number of code points in text
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// IsPalindrome reports whether text reads the same in both directions
// once everything but letters and digits is dropped and the rest is lower-cased.
func IsPalindrome(text string) bool {
	// Casers keep state, so each call gets its own. Each kept character is
	// lowered on its own, which keeps context rules like final sigma out.
	lower := cases.Lower(language.Und)

	var sb strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			sb.WriteString(lower.String(string(r)))
		}
	}

	runes := []rune(sb.String())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

// ContentHash returns the lowercase hex SHA-256 digest of text
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// UniqueCharacters returns the number of distinct characters and the
// characters themselves in ascending code point order
func UniqueCharacters(text string) (int, []string) {
	chars := CharacterFrequency(text).Characters()
	return len(chars), chars
}
