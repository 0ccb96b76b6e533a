package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/imhuimie/string-analyzer-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	db := database.NewMemory()
	mgr := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, mgr.Load())
	return NewServer(mgr, service.New(db, nil, nil), db, token, "0")
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestAnalyzeString(t *testing.T) {
	s := newTestServer(t, "")

	w, body := do(t, s, http.MethodPost, "/strings", `{"value": "racecar"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, "racecar", body["value"])
	assert.Len(t, body["id"], 64)
	assert.NotEmpty(t, body["created_at"])

	props := body["properties"].(map[string]interface{})
	assert.Equal(t, float64(7), props["length"])
	assert.Equal(t, true, props["is_palindrome"])
	assert.Equal(t, float64(4), props["unique_characters"])
	assert.Equal(t, float64(1), props["word_count"])
	assert.Equal(t, body["id"], props["sha256_hash"])
	assert.Equal(t, map[string]interface{}{"a": float64(2), "c": float64(2), "e": float64(1), "r": float64(2)},
		props["character_frequency_map"])
}

func TestAnalyzeString_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing value", `{}`, http.StatusBadRequest},
		{"null value", `{"value": null}`, http.StatusBadRequest},
		{"empty value", `{"value": ""}`, http.StatusBadRequest},
		{"broken json", `{"value": `, http.StatusBadRequest},
		{"number", `{"value": 123}`, http.StatusUnprocessableEntity},
		{"array", `{"value": ["a"]}`, http.StatusUnprocessableEntity},
		{"object", `{"value": {"x": 1}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newTestServer(t, ""), http.MethodPost, "/strings", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAnalyzeString_Conflict(t *testing.T) {
	s := newTestServer(t, "")

	w, _ := do(t, s, http.MethodPost, "/strings", `{"value": "hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := do(t, s, http.MethodPost, "/strings", `{"value": "hello"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", body["status"])
}

func TestGetString(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPost, "/strings", `{"value": "hello world"}`)
	do(t, s, http.MethodPost, "/strings", `{"value": "a/b"}`)

	w, body := do(t, s, http.MethodGet, "/strings/hello%20world", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello world", body["value"])

	w, body = do(t, s, http.MethodGet, "/strings/a%2Fb", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "a/b", body["value"])

	do(t, s, http.MethodPost, "/strings", `{"value": "1+1/2"}`)
	w, body = do(t, s, http.MethodGet, "/strings/1+1%2F2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1+1/2", body["value"])

	do(t, s, http.MethodPost, "/strings", `{"value": "100%"}`)
	w, body = do(t, s, http.MethodGet, "/strings/100%25", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100%", body["value"])

	w, body = do(t, s, http.MethodGet, "/strings/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", body["status"])
}

func TestListStrings(t *testing.T) {
	s := newTestServer(t, "")
	for _, v := range []string{"level", "hello", "noon", "hello world"} {
		do(t, s, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
	}

	w, body := do(t, s, http.MethodGet, "/strings?is_palindrome=true&min_length=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "level", data[0].(map[string]interface{})["value"])

	applied := body["filters_applied"].(map[string]interface{})
	assert.Equal(t, true, applied["is_palindrome"])
	assert.Equal(t, float64(5), applied["min_length"])
	assert.Contains(t, applied, "max_length")
	assert.Nil(t, applied["max_length"])

	w, body = do(t, s, http.MethodGet, "/strings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), body["count"])
}

func TestListStrings_InvalidParams(t *testing.T) {
	w, body := do(t, newTestServer(t, ""), http.MethodGet, "/strings?min_length=abc&contains_character=xy", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Len(t, body["details"], 2)
}

func TestListNatural(t *testing.T) {
	s := newTestServer(t, "")
	for _, v := range []string{"level", "hello", "a b a"} {
		do(t, s, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
	}

	w, body := do(t, s, http.MethodGet, "/strings/filter-by-natural-language?query=all%20single%20word%20palindromic%20strings", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), body["count"])

	interpreted := body["interpreted_query"].(map[string]interface{})
	assert.Equal(t, "all single word palindromic strings", interpreted["original"])
	assert.Equal(t, map[string]interface{}{"word_count": float64(1), "is_palindrome": true}, interpreted["parsed_filters"])
}

func TestListNatural_Errors(t *testing.T) {
	s := newTestServer(t, "")

	w, _ := do(t, s, http.MethodGet, "/strings/filter-by-natural-language", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := do(t, s, http.MethodGet, "/strings/filter-by-natural-language?query=gibberish+xyz", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unable to parse natural language query", body["message"])
}

func TestDeleteString(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPost, "/strings", `{"value": "bye"}`)

	w, body := do(t, s, http.MethodDelete, "/strings/bye", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])

	w, _ = do(t, s, http.MethodDelete, "/strings/bye", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, s, http.MethodPost, "/strings", `{"value": "a+b/c"}`)
	w, _ = do(t, s, http.MethodDelete, "/strings/a+b%2Fc", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodGet, "/strings/a+b%2Fc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteString_RequiresToken(t *testing.T) {
	s := newTestServer(t, testToken)
	do(t, s, http.MethodPost, "/strings", `{"value": "guarded"}`)

	w, _ := do(t, s, http.MethodDelete, "/strings/guarded", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/strings/guarded", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/strings/guarded", "", "Authorization", "Bearer "+testToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, "")

	w, _ := do(t, s, http.MethodGet, "/api/health", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w, _ = do(t, s, http.MethodGet, "/api/health", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type downDB struct {
	*database.Memory
}

func (downDB) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHealth(t *testing.T) {
	w, body := do(t, newTestServer(t, ""), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])

	db := downDB{database.NewMemory()}
	s := NewServer(nil, service.New(db, nil, nil), db, "", "0")
	w, body = do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disconnected", body["database"])
}

func TestConfigEndpoints(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	mgr := config.NewManager(path)
	require.NoError(t, mgr.Load())
	db := database.NewMemory()
	s := NewServer(mgr, service.New(db, nil, nil), db, testToken, "0")
	auth := []string{"Authorization", "Bearer " + testToken}

	w, _ := do(t, s, http.MethodGet, "/api/config", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := do(t, s, http.MethodGet, "/api/config", "", auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sqlite", body["config"].(map[string]interface{})["db_type"])

	w, _ = do(t, s, http.MethodPost, "/api/config", `{"config": {"port": "8080", "db_type": "cassandra"}}`, auth...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/config", `{"config": {"port": "8080", "db_type": "memory", "notice_type": "none"}}`, auth...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, "8080", mgr.Get().Port)
}

func TestConfigEndpoints_AbsentWithoutToken(t *testing.T) {
	w, _ := do(t, newTestServer(t, ""), http.MethodGet, "/api/config", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
