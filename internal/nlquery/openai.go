// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "OpenAI Compatible API Filter"
//   Timestamp: "2026-10-18T11:25:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Reused the chat completion client to interpret unrecognized list queries"
//   Principle_Applied: "Aether-Engineering-SOLID-O, Interface Segregation"
//   Quality_Check: "Full OpenAI API compatibility with error handling and response parsing"
// }}

package nlquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// OpenAICompleter talks to an OpenAI-compatible chat completions endpoint
type OpenAICompleter struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAICompleter creates a new OpenAI-compatible client
func NewOpenAICompleter(apiURL, apiKey, model string) *OpenAICompleter {
	return &OpenAICompleter{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIRequest represents the request to OpenAI-compatible API
type OpenAIRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// OpenAIResponse represents the response from OpenAI-compatible API
type OpenAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete implements Completer
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	req := OpenAIRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("无法序列化请求: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("无法创建请求: %w", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("无法读取响应: %w", err)
	}

	// Check for HTTP errors
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API 返回错误状态码 %d: %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", fmt.Errorf("无法解析响应: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API 返回空结果")
	}

	result := strings.TrimSpace(openAIResp.Choices[0].Message.Content)

	log.Debugf("OpenAI 查询解析结果: %s", result)
	log.Debugf("Token 使用量 - Prompt: %d, Completion: %d, Total: %d",
		openAIResp.Usage.PromptTokens,
		openAIResp.Usage.CompletionTokens,
		openAIResp.Usage.TotalTokens)

	return result, nil
}
