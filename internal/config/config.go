// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Config Module Implementation"
//   Timestamp: "2026-10-18T10:00:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Moved storage, notification and model fallback settings into one file with env overrides"
//   Principle_Applied: "Aether-Engineering-SOLID-S, DRY"
//   Quality_Check: "Defaults for every key, env vars keep their historical names"
// }}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Port        string `json:"port" mapstructure:"port"`
	AccessToken string `json:"access_token" mapstructure:"access_token"`
	LogLevel    string `json:"log_level" mapstructure:"log_level"`

	// Storage: "sqlite", "mongodb", "badger" or "memory"
	DBType     string `json:"db_type" mapstructure:"db_type"`
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path"`
	MongoHost  string `json:"mongo_host" mapstructure:"mongo_host"`
	BadgerPath string `json:"badger_path" mapstructure:"badger_path"`

	// Model fallback for natural language queries
	UseAIFallback bool   `json:"use_ai_fallback" mapstructure:"use_ai_fallback"`
	AIProvider    string `json:"ai_provider" mapstructure:"ai_provider"` // "openai" or "cloudflare"
	CFAccountID   string `json:"cf_account_id" mapstructure:"cf_account_id"`
	CFToken       string `json:"cf_token" mapstructure:"cf_token"`
	Model         string `json:"model" mapstructure:"model"`
	OpenAIAPIURL  string `json:"openai_api_url" mapstructure:"openai_api_url"`
	OpenAIAPIKey  string `json:"openai_api_key" mapstructure:"openai_api_key"`
	OpenAIModel   string `json:"openai_model" mapstructure:"openai_model"`

	// Notification: "none", "telegram", "wechat" or "custom"
	NoticeType  string `json:"notice_type" mapstructure:"notice_type"`
	TelegramBot string `json:"telegrambot" mapstructure:"telegrambot"`
	ChatID      string `json:"chat_id" mapstructure:"chat_id"`
	WeChatKey   string `json:"wechat_key" mapstructure:"wechat_key"`
	CustomURL   string `json:"custom_url" mapstructure:"custom_url"`
}

// ConfigWrapper wraps the config with a "config" key
type ConfigWrapper struct {
	Config *Config `json:"config"`
}

var defaults = map[string]interface{}{
	"port":            "5556",
	"access_token":    "",
	"log_level":       "info",
	"db_type":         "sqlite",
	"sqlite_path":     "data/strings.db",
	"mongo_host":      "mongodb://localhost:27017/",
	"badger_path":     "data/badger",
	"use_ai_fallback": false,
	"ai_provider":     "openai",
	"cf_account_id":   "",
	"cf_token":        "",
	"model":           "",
	"openai_api_url":  "https://api.openai.com/v1/chat/completions",
	"openai_api_key":  "",
	"openai_model":    "gpt-4o-mini",
	"notice_type":     "none",
	"telegrambot":     "",
	"chat_id":         "",
	"wechat_key":      "",
	"custom_url":      "",
}

// Manager handles configuration loading and reloading
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Load loads configuration from defaults, the config file and the environment,
// in increasing order of precedence
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if _, err := os.Stat(m.configPath); err == nil {
		data, err := os.ReadFile(m.configPath)
		if err != nil {
			return fmt.Errorf("无法读取配置文件: %w", err)
		}

		var wrapper map[string]map[string]interface{}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("无法解析配置文件: %w", err)
		}
		section, ok := wrapper["config"]
		if !ok {
			return errors.New("配置文件格式错误: 缺少 'config' 键")
		}
		if err := v.MergeConfigMap(section); err != nil {
			return fmt.Errorf("无法合并配置文件: %w", err)
		}
		log.Infof("配置文件加载成功: %s", m.configPath)
	} else if os.IsNotExist(err) {
		log.Infof("配置文件 %s 不存在，使用默认值和环境变量", m.configPath)
	} else {
		return fmt.Errorf("无法访问配置文件: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("无法解码配置: %w", err)
	}

	m.config = &cfg
	return nil
}

// Save saves configuration to file
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wrapper := ConfigWrapper{Config: cfg}
	data, err := json.MarshalIndent(wrapper, "", "    ")
	if err != nil {
		return fmt.Errorf("无法序列化配置: %w", err)
	}

	if dir := filepath.Dir(m.configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("无法创建配置目录: %w", err)
		}
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("无法保存配置文件: %w", err)
	}

	configCopy := *cfg
	m.config = &configCopy
	log.Info("配置文件保存成功")
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return nil
	}

	// Return a copy to prevent external modifications
	configCopy := *m.config
	return &configCopy
}

// Reload reloads the configuration from file
func (m *Manager) Reload() error {
	log.Info("重新加载配置...")
	return m.Load()
}

// Validate validates the configuration
func (cfg *Config) Validate() error {
	if cfg.Port == "" {
		return fmt.Errorf("port 不能为空")
	}

	switch cfg.DBType {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLite 配置不完整: 需要 sqlite_path")
		}
	case "mongodb":
		if cfg.MongoHost == "" {
			return fmt.Errorf("MongoDB 配置不完整: 需要 mongo_host")
		}
	case "badger":
		if cfg.BadgerPath == "" {
			return fmt.Errorf("Badger 配置不完整: 需要 badger_path")
		}
	case "memory":
	default:
		return fmt.Errorf("db_type 必须是 'sqlite', 'mongodb', 'badger' 或 'memory'")
	}

	switch cfg.NoticeType {
	case "", "none":
	case "telegram":
		if cfg.TelegramBot == "" || cfg.ChatID == "" {
			return fmt.Errorf("Telegram 配置不完整: 需要 telegrambot 和 chat_id")
		}
	case "wechat":
		if cfg.WeChatKey == "" {
			return fmt.Errorf("微信配置不完整: 需要 wechat_key")
		}
	case "custom":
		if cfg.CustomURL == "" {
			return fmt.Errorf("自定义通知配置不完整: 需要 custom_url")
		}
	default:
		return fmt.Errorf("notice_type 必须是 'none', 'telegram', 'wechat' 或 'custom'")
	}

	if cfg.UseAIFallback {
		switch cfg.AIProvider {
		case "cloudflare":
			if cfg.CFAccountID == "" || cfg.CFToken == "" || cfg.Model == "" {
				return fmt.Errorf("AI 回退配置不完整: 需要 cf_account_id, cf_token 和 model")
			}
		case "openai":
			if cfg.OpenAIAPIURL == "" || cfg.OpenAIAPIKey == "" || cfg.OpenAIModel == "" {
				return fmt.Errorf("AI 回退配置不完整: 需要 openai_api_url, openai_api_key 和 openai_model")
			}
		default:
			return fmt.Errorf("ai_provider 必须是 'openai' 或 'cloudflare'")
		}
	}

	return nil
}

// ConnectionString returns the DSN or path for the configured storage
func (cfg *Config) ConnectionString() string {
	switch cfg.DBType {
	case "sqlite":
		return cfg.SQLitePath
	case "mongodb":
		return cfg.MongoHost
	case "badger":
		return cfg.BadgerPath
	default:
		return ""
	}
}

// GetEnv retrieves environment variable or returns default value
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
