// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Custom Notifier Implementation"
//   Timestamp: "2026-10-18T12:14:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Message is now query-escaped before it replaces the placeholder"
//   Principle_Applied: "Aether-Engineering-SOLID-S"
//   Quality_Check: "Custom webhook with message placeholder support"
// }}

package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// MessagePlaceholder is replaced by the escaped message in the webhook URL
const MessagePlaceholder = "{message}"

// CustomNotifier sends notifications via custom webhook
type CustomNotifier struct {
	messenger
	webhookURL string
	client     *http.Client
}

// NewCustomNotifier creates a new custom notifier
func NewCustomNotifier(webhookURL string) *CustomNotifier {
	c := &CustomNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	c.messenger = messenger{send: c.Send}
	return c
}

// Send sends a message via custom webhook
func (c *CustomNotifier) Send(message string) error {
	target := strings.ReplaceAll(c.webhookURL, MessagePlaceholder, url.QueryEscape(message))

	resp, err := c.client.Get(target)
	if err != nil {
		log.Warnf("发送自定义通知失败: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("自定义通知 API 返回非 200 状态码: %d", resp.StatusCode)
		return fmt.Errorf("自定义通知 API 错误: 状态码 %d", resp.StatusCode)
	}

	log.Info("自定义通知发送成功")
	return nil
}
