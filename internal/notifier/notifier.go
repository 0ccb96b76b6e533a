// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Notifier Interface and Factory"
//   Timestamp: "2026-10-18T12:10:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Replaced thread and comment hooks with record created and deleted hooks"
//   Principle_Applied: "Aether-Engineering-SOLID-I (Interface Segregation), Factory Pattern"
//   Quality_Check: "Multi-channel notification support with clean interface"
// }}

package notifier

import (
	"fmt"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/imhuimie/string-analyzer-go/internal/utils"
)

// Notifier defines the interface for sending notifications
type Notifier interface {
	Send(message string) error
	SendCreated(record *database.StringRecord) error
	SendDeleted(record *database.StringRecord, deletedAt time.Time) error
}

// NewNotifier creates a notifier based on configuration.
// It returns nil when notifications are turned off.
func NewNotifier(cfg *config.Config) (Notifier, error) {
	switch cfg.NoticeType {
	case "", "none":
		return nil, nil
	case "telegram":
		return NewTelegramNotifier(cfg.TelegramBot, cfg.ChatID), nil
	case "wechat":
		return NewWeChatNotifier(cfg.WeChatKey), nil
	case "custom":
		return NewCustomNotifier(cfg.CustomURL), nil
	default:
		return nil, fmt.Errorf("不支持的通知类型: %s", cfg.NoticeType)
	}
}

// messenger supplies the record hooks on top of a plain Send
type messenger struct {
	send func(message string) error
}

func (m messenger) SendCreated(record *database.StringRecord) error {
	return m.send(utils.FormatCreatedMessage(record))
}

func (m messenger) SendDeleted(record *database.StringRecord, deletedAt time.Time) error {
	return m.send(utils.FormatDeletedMessage(record, deletedAt))
}
