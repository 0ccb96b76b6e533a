// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Message Formatting Utilities"
//   Timestamp: "2026-10-18T12:05:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Reworked thread and comment messages into record lifecycle messages"
//   Principle_Applied: "Aether-Engineering-DRY"
//   Quality_Check: "Long values are cut on a character boundary"
// }}

package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/database"
)

// MaxPreviewLength is the number of characters of a value shown in a message
const MaxPreviewLength = 200

// Truncate shortens s to at most n characters, appending "..." when cut
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// FormatCreatedMessage formats a newly analyzed record into a notification message
func FormatCreatedMessage(record *database.StringRecord) string {
	var sb strings.Builder

	sb.WriteString("新字符串已分析\n")
	sb.WriteString(fmt.Sprintf("内容：%s\n", Truncate(record.Value, MaxPreviewLength)))
	sb.WriteString(fmt.Sprintf("长度：%d\n", record.Properties.Length))
	sb.WriteString(fmt.Sprintf("单词数：%d\n", record.Properties.WordCount))
	sb.WriteString(fmt.Sprintf("回文：%s\n", yesNo(record.Properties.IsPalindrome)))
	sb.WriteString(fmt.Sprintf("时间：%s\n\n", record.CreatedAt.Format("2006/01/02 15:04")))

	sb.WriteString(record.ID)

	return sb.String()
}

// FormatDeletedMessage formats a removed record into a notification message
func FormatDeletedMessage(record *database.StringRecord, deletedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("字符串已删除\n")
	sb.WriteString(fmt.Sprintf("内容：%s\n", Truncate(record.Value, MaxPreviewLength)))
	sb.WriteString(fmt.Sprintf("时间：%s\n\n", deletedAt.Format("2006/01/02 15:04")))

	sb.WriteString(record.ID)

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
