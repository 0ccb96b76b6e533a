// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "AI Interpreter Factory Pattern"
//   Timestamp: "2026-10-18T11:35:00Z"
//   Authoring_Role: "AR"
//   Analysis_Performed: "Implemented Factory pattern for model provider selection"
//   Principle_Applied: "Aether-Engineering-SOLID-O (Open/Closed Principle)"
//   Quality_Check: "Supports easy addition of new AI providers"
// }}

package nlquery

import (
	"fmt"

	"github.com/imhuimie/string-analyzer-go/internal/config"
)

// NewInterpreterFromConfig creates the model fallback, or nil when it is disabled
func NewInterpreterFromConfig(cfg *config.Config) (Interpreter, error) {
	if !cfg.UseAIFallback {
		return nil, nil
	}

	switch cfg.AIProvider {
	case "cloudflare":
		return NewModelInterpreter(NewCloudflareCompleter(cfg.CFAccountID, cfg.CFToken, cfg.Model)), nil
	case "openai":
		return NewModelInterpreter(NewOpenAICompleter(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)), nil
	default:
		return nil, fmt.Errorf("不支持的 AI 提供商: %s", cfg.AIProvider)
	}
}
