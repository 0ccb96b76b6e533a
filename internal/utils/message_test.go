package utils

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("", 5))

	// multi-byte characters are never split
	got := Truncate(strings.Repeat("字", 10), 4)
	assert.Equal(t, "字字字字...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestFormatCreatedMessage(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	record := database.NewStringRecord("racecar", created)

	msg := FormatCreatedMessage(record)

	assert.True(t, strings.HasPrefix(msg, "新字符串已分析\n"))
	assert.Contains(t, msg, "内容：racecar\n")
	assert.Contains(t, msg, "长度：7\n")
	assert.Contains(t, msg, "单词数：1\n")
	assert.Contains(t, msg, "回文：是\n")
	assert.Contains(t, msg, "时间：2026/10/18 09:30\n")
	assert.True(t, strings.HasSuffix(msg, record.ID))
}

func TestFormatCreatedMessage_LongValue(t *testing.T) {
	record := database.NewStringRecord(strings.Repeat("é", 300), time.Now())

	msg := FormatCreatedMessage(record)

	assert.Contains(t, msg, "内容："+strings.Repeat("é", MaxPreviewLength)+"...\n")
	assert.Contains(t, msg, "回文：是\n")
}

func TestFormatDeletedMessage(t *testing.T) {
	record := database.NewStringRecord("hello world", time.Now())
	deleted := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)

	msg := FormatDeletedMessage(record, deleted)

	assert.Equal(t, "字符串已删除\n内容：hello world\n时间：2026/01/02 03:04\n\n"+record.ID, msg)
}
