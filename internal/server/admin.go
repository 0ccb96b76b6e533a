package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/imhuimie/string-analyzer-go/internal/nlquery"
	"github.com/imhuimie/string-analyzer-go/internal/notifier"
	log "github.com/sirupsen/logrus"
)

// handleGetConfig returns the current configuration
func (s *Server) handleGetConfig(c *gin.Context) {
	cfg := s.configMgr.Get()
	if cfg == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "配置未加载",
		})
		return
	}

	c.JSON(http.StatusOK, config.ConfigWrapper{Config: cfg})
}

// handleUpdateConfig validates and persists a new configuration.
// Storage, notification and fallback changes apply on the next start.
func (s *Server) handleUpdateConfig(c *gin.Context) {
	var requestBody config.ConfigWrapper

	if err := c.ShouldBindJSON(&requestBody); err != nil {
		log.Warnf("解析请求JSON失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("无效的请求数据: %v", err),
		})
		return
	}

	if requestBody.Config == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "缺少 config 字段",
		})
		return
	}

	// Validate configuration
	if err := requestBody.Config.Validate(); err != nil {
		log.Warnf("配置验证失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("配置验证失败: %v", err),
		})
		return
	}

	// Save configuration
	if err := s.configMgr.Save(requestBody.Config); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("保存配置失败: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Config saved, restart to apply",
	})
}

// handleTestOpenAI runs one query through an OpenAI-compatible endpoint
func (s *Server) handleTestOpenAI(c *gin.Context) {
	var testReq struct {
		APIUrl string `json:"api_url" binding:"required"`
		APIKey string `json:"api_key"`
		Model  string `json:"model" binding:"required"`
		Query  string `json:"query"`
	}

	if err := c.ShouldBindJSON(&testReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "无效的请求数据",
		})
		return
	}
	if testReq.Query == "" {
		testReq.Query = "palindromes with more than five characters"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	interp := nlquery.NewModelInterpreter(nlquery.NewOpenAICompleter(testReq.APIUrl, testReq.APIKey, testReq.Model))
	filters, err := interp.Interpret(ctx, testReq.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("API测试失败: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "API测试成功",
		"result":  filters.Set(),
	})
}

// handleTestTelegram tests Telegram notification configuration
func (s *Server) handleTestTelegram(c *gin.Context) {
	var testReq struct {
		BotToken string `json:"bot_token" binding:"required"`
		ChatID   string `json:"chat_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&testReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "无效的请求数据",
		})
		return
	}

	telegramNotifier := notifier.NewTelegramNotifier(testReq.BotToken, testReq.ChatID)

	testMessage := "🔔 这是来自 String-Analyzer-Go 的测试消息\n\n如果您收到此消息，说明 Telegram 配置正确！"

	if err := telegramNotifier.Send(testMessage); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("发送测试消息失败: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "测试消息发送成功，请检查您的 Telegram",
	})
}
