// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Cloudflare Workers AI Client"
//   Timestamp: "2026-10-18T11:30:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Reused the Workers AI client as a second query interpretation provider"
//   Principle_Applied: "Aether-Engineering-SOLID-O"
//   Quality_Check: "API errors surface with the provider's error list"
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

const cloudflareBaseURL = "https://api.cloudflare.com/client/v4"

// CloudflareCompleter talks to Cloudflare Workers AI
type CloudflareCompleter struct {
	baseURL   string
	accountID string
	token     string
	model     string
	client    *http.Client
}

// NewCloudflareCompleter creates a new Workers AI client
func NewCloudflareCompleter(accountID, token, model string) *CloudflareCompleter {
	return &CloudflareCompleter{
		baseURL:   cloudflareBaseURL,
		accountID: accountID,
		token:     token,
		model:     model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CloudflareRequest represents the request to Cloudflare AI API
type CloudflareRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// CloudflareResponse represents the response from Cloudflare AI API
type CloudflareResponse struct {
	Result struct {
		Response string `json:"response"`
		Choices  []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Complete implements Completer
func (c *CloudflareCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	apiURL := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)

	req := CloudflareRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("无法序列化请求: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("无法创建请求: %w", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("AI API 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("无法读取响应: %w", err)
	}

	var aiResp CloudflareResponse
	if err := json.Unmarshal(body, &aiResp); err != nil {
		return "", fmt.Errorf("无法解析响应: %w", err)
	}

	if !aiResp.Success || len(aiResp.Errors) > 0 {
		return "", fmt.Errorf("AI API 返回错误: %v", aiResp.Errors)
	}

	// text models answer in result.response, chat-style ones in choices
	result := aiResp.Result.Response
	if result == "" && len(aiResp.Result.Choices) > 0 {
		result = aiResp.Result.Choices[0].Message.Content
	}
	if result == "" {
		return "", fmt.Errorf("AI API 返回空结果")
	}

	result = strings.TrimSpace(result)

	log.Debugf("Cloudflare 查询解析结果: %s", result)
	return result, nil
}
