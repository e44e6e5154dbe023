package infra

import (
	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func InitializeTelegramBot(config TelegramConfig) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot api client")
	}
	bot.Debug = config.Debug
	return bot, nil
}
