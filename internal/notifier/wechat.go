// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "WeChat Notifier Implementation"
//   Timestamp: "2026-10-18T12:13:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Retitled the 息知 push for string record events"
//   Principle_Applied: "Aether-Engineering-SOLID-S"
//   Quality_Check: "息知 API integration implemented"
// }}

package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const wechatBaseURL = "https://xizhi.qqoq.net"

// WeChatNotifier sends notifications via WeChat (息知)
type WeChatNotifier struct {
	messenger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewWeChatNotifier creates a new WeChat notifier
func NewWeChatNotifier(apiKey string) *WeChatNotifier {
	w := &WeChatNotifier{
		baseURL: wechatBaseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	w.messenger = messenger{send: w.Send}
	return w
}

// Send sends a message via WeChat
func (w *WeChatNotifier) Send(message string) error {
	apiURL := fmt.Sprintf("%s/%s.send", w.baseURL, w.apiKey)

	params := url.Values{}
	params.Set("title", "字符串变更通知")
	params.Set("content", message)

	resp, err := w.client.Get(apiURL + "?" + params.Encode())
	if err != nil {
		log.Warnf("发送微信消息失败: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("微信 API 返回非 200 状态码: %d", resp.StatusCode)
		return fmt.Errorf("微信 API 错误: 状态码 %d", resp.StatusCode)
	}

	log.Info("微信消息发送成功")
	return nil
}
