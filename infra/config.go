package infra

import "fmt"

const DEFAULT_MAX_CONNECTIONS = 20

type PgConfig struct {
	ConnectionString   string
	Database           string
	Hostname           string
	Password           string
	Port               string
	User               string
	MaxPoolConnections int
	SslMode            string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.Port, config.User, config.Password, config.Database, config.SslMode)
}

type TelegramConfig struct {
	Token string
	// WebhookSecret is the path segment Telegram is configured to deliver
	// updates to. Checked on every webhook request.
	WebhookSecret string
	// Debug turns on the bot api client's request logging.
	Debug bool
}

type AgentProviderType string

const (
	AgentProviderTypeAIStudio AgentProviderType = "aistudio"
	AgentProviderTypeOpenAI   AgentProviderType = "openai"
)

type AgentConfig struct {
	ProviderType AgentProviderType
	ApiKey       string
	BaseUrl      string
	DefaultModel string
}
