// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Telegram Notifier Implementation"
//   Timestamp: "2026-10-18T12:12:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Kept the Bot API sendMessage call for record events"
//   Principle_Applied: "Aether-Engineering-SOLID-S"
//   Quality_Check: "Non-200 answers are reported with the API body"
// }}

package notifier

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramNotifier sends notifications via Telegram
type TelegramNotifier struct {
	messenger
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	t := &TelegramNotifier{
		baseURL:  telegramBaseURL,
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	t.messenger = messenger{send: t.Send}
	return t
}

// Send sends a message via Telegram
func (t *TelegramNotifier) Send(message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	params := url.Values{}
	params.Set("chat_id", t.chatID)
	params.Set("text", message)

	resp, err := t.client.PostForm(apiURL, params)
	if err != nil {
		log.Warnf("发送 Telegram 消息失败: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Warnf("Telegram API 返回非 200 状态码: %d, 响应: %s", resp.StatusCode, string(body))
		return fmt.Errorf("Telegram API 错误 (状态码 %d): %s", resp.StatusCode, string(body))
	}

	log.Info("Telegram 消息发送成功")
	return nil
}
