package analyzer

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// CharCount is one entry of a character histogram
type CharCount struct {
	Char  string
	Count int
}

// Frequency is a character histogram ordered by code point.
// It serializes as an object whose keys keep that order.
type Frequency []CharCount

// CharacterFrequency counts every character of text, case-sensitive
func CharacterFrequency(text string) Frequency {
	index := make(map[rune]int)
	var freq Frequency

	for _, r := range text {
		if i, ok := index[r]; ok {
			freq[i].Count++
			continue
		}
		index[r] = len(freq)
		freq = append(freq, CharCount{Char: string(r), Count: 1})
	}

	sort.Slice(freq, func(i, j int) bool {
		return firstRune(freq[i].Char) < firstRune(freq[j].Char)
	})
	return freq
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// Characters returns the histogram keys in order
func (f Frequency) Characters() []string {
	chars := make([]string, len(f))
	for i, c := range f {
		chars[i] = c.Char
	}
	return chars
}

// Total returns the sum of all counts
func (f Frequency) Total() int {
	total := 0
	for _, c := range f {
		total += c.Count
	}
	return total
}

// MarshalJSON writes the histogram as an object in code point order
func (f Frequency) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Char)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of counts back into code point order
func (f *Frequency) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	out := make(Frequency, 0, len(m))
	for char, count := range m {
		out = append(out, CharCount{Char: char, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return firstRune(out[i].Char) < firstRune(out[j].Char)
	})
	*f = out
	return nil
}

// MarshalYAML writes the histogram as a mapping in code point order
func (f Frequency) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range f {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Char},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(c.Count)},
		)
	}
	return node, nil
}
