package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/imhuimie/string-analyzer-go/internal/errs"
	"github.com/imhuimie/string-analyzer-go/internal/query"
	log "github.com/sirupsen/logrus"
)

// errorBody is the shape of every failed response
type errorBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// writeError answers with the status belonging to err's kind
func writeError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	body := errorBody{Status: "error", Message: "internal server error"}

	var e *errs.Error
	if kind == errs.KindInternal {
		log.WithField("request_id", c.GetString("request_id")).Errorf("请求处理失败: %v", err)
	} else if errors.As(err, &e) {
		body.Message = e.Message
		body.Details = e.Details
	}

	c.AbortWithStatusJSON(kind.HTTPStatus(), body)
}

// handleAnalyze analyzes and stores a new string
func (s *Server) handleAnalyze(c *gin.Context) {
	var requestBody struct {
		Value json.RawMessage `json:"value"`
	}

	if err := c.ShouldBindJSON(&requestBody); err != nil {
		log.Warnf("解析请求JSON失败: %v", err)
		writeError(c, errs.Validation("invalid request body", err.Error()))
		return
	}

	if len(requestBody.Value) == 0 || string(requestBody.Value) == "null" {
		writeError(c, errs.Validation(`missing "value" field`))
		return
	}

	var value string
	if err := json.Unmarshal(requestBody.Value, &value); err != nil {
		writeError(c, errs.Unprocessable(`invalid data type for "value", must be a string`))
		return
	}

	record, err := s.svc.Analyze(c.Request.Context(), value)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// pathValue decodes the :value segment. Routing reads the escaped path only
// when the request carries one; otherwise the segment is already decoded.
// Path unescaping keeps "+" literal.
func pathValue(c *gin.Context) (string, error) {
	if c.Request.URL.RawPath == "" {
		return c.Param("value"), nil
	}
	value, err := url.PathUnescape(c.Param("value"))
	if err != nil {
		return "", errs.Validation("invalid path value", err.Error())
	}
	return value, nil
}

// handleGet returns one stored string
func (s *Server) handleGet(c *gin.Context) {
	value, err := pathValue(c)
	if err != nil {
		writeError(c, err)
		return
	}

	record, err := s.svc.Get(c.Request.Context(), value)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleList returns the strings matching the query parameters
func (s *Server) handleList(c *gin.Context) {
	filters, err := query.ParseFilters(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := s.svc.List(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleListNatural returns the strings matching a plain English query
func (s *Server) handleListNatural(c *gin.Context) {
	result, err := s.svc.ListNatural(c.Request.Context(), c.Query("query"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDelete removes a stored string
func (s *Server) handleDelete(c *gin.Context) {
	value, err := pathValue(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.svc.Delete(c.Request.Context(), value); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "String deleted successfully",
	})
}
