package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imhuimie/string-analyzer-go/internal/query"
)

// Completer sends one system prompt and one user message to a chat model
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const interpretPrompt = `You translate questions about a collection of stored strings into filters.
Reply with a single JSON object and nothing else. Allowed keys:
  "is_palindrome": boolean
  "min_length": non-negative integer, inclusive
  "max_length": non-negative integer, inclusive
  "word_count": non-negative integer, exact
  "contains_character": string holding exactly one character
Leave out keys the question does not constrain. "longer than N" means min_length N+1.
If the question cannot be expressed with these keys reply with {}.`

// ModelInterpreter asks a chat model for filters
type ModelInterpreter struct {
	completer Completer
}

// NewModelInterpreter creates an interpreter backed by completer
func NewModelInterpreter(completer Completer) *ModelInterpreter {
	return &ModelInterpreter{completer: completer}
}

// Interpret implements Interpreter
func (m *ModelInterpreter) Interpret(ctx context.Context, q string) (query.Filters, error) {
	reply, err := m.completer.Complete(ctx, interpretPrompt, q)
	if err != nil {
		return query.Filters{}, err
	}
	return parseReply(reply)
}

// parseReply decodes the model's JSON, tolerating a markdown code fence
func parseReply(reply string) (query.Filters, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var f query.Filters
	dec := json.NewDecoder(strings.NewReader(reply))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return query.Filters{}, fmt.Errorf("无法解析模型回复: %w (回复: %.200s)", err, reply)
	}
	return f, nil
}
