package api

import "time"

type Configuration struct {
	Env                 string
	AppName             string
	Port                string
	RequestLoggingLevel string
	DefaultTimeout      time.Duration

	// TelegramWebhookSecret is the path segment Telegram must present when
	// delivering updates. Requests with any other value get a 404.
	TelegramWebhookSecret string

	EnablePrometheus bool
}
