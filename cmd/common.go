package cmd

import (
	"strings"
	"time"

	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/utils"
)

const appName = "studybot-backend"

// This is where we read the environment variables and set up the configuration
// for the application.

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           utils.GetEnv("PG_DATABASE", "studybot"),
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}

func telegramConfigFromEnv() infra.TelegramConfig {
	return infra.TelegramConfig{
		Token:         utils.GetRequiredEnv[string]("TELEGRAM_TOKEN"),
		WebhookSecret: utils.GetEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		Debug:         utils.GetEnv("TELEGRAM_DEBUG", false),
	}
}

func agentConfigFromEnv() infra.AgentConfig {
	return infra.AgentConfig{
		ProviderType: infra.AgentProviderType(utils.GetEnv("LLM_PROVIDER", string(infra.AgentProviderTypeAIStudio))),
		ApiKey:       utils.GetRequiredEnv[string]("LLM_API_KEY"),
		BaseUrl:      utils.GetEnv("LLM_BASE_URL", ""),
		DefaultModel: utils.GetEnv("LLM_DEFAULT_MODEL", "gemini-2.0-flash"),
	}
}

func sessionTtlFromEnv() time.Duration {
	return time.Duration(utils.GetEnv("SESSION_TTL_HOURS", 24)) * time.Hour
}

// splitCommaList parses "eng,deu" style env values, dropping empty entries.
func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
