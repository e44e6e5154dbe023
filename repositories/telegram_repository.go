package repositories

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

const (
	telegramSendAttempts = 3
	telegramSendDelay    = 500 * time.Millisecond
)

// TelegramRepository is the outbound side of the bot: everything the usecases
// send back into a chat goes through here.
type TelegramRepository interface {
	SendText(ctx context.Context, chatId int64, text string) error
	SendMarkdown(ctx context.Context, chatId int64, text string) error
	SendModeKeyboard(ctx context.Context, chatId int64) (messageId int, err error)
	EditMessageText(ctx context.Context, chatId int64, messageId int, text string) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryId string) error
	SendDocument(ctx context.Context, chatId int64, filename string, content []byte, caption string) error
	DownloadFile(ctx context.Context, fileId string) ([]byte, error)
}

type TelegramBotApiRepository struct {
	bot        *tgbotapi.BotAPI
	httpClient *http.Client
}

func NewTelegramBotApiRepository(bot *tgbotapi.BotAPI) TelegramBotApiRepository {
	return TelegramBotApiRepository{
		bot:        bot,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// sendWithRetry wraps the bot api client, which has no context support of its
// own, with bounded retries so that a single flaky roundtrip does not lose a
// user-visible message.
func (repo TelegramBotApiRepository) sendWithRetry(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return retry.DoWithData(
		func() (tgbotapi.Message, error) {
			return repo.bot.Send(c)
		},
		retry.Context(ctx),
		retry.Attempts(telegramSendAttempts),
		retry.Delay(telegramSendDelay),
		retry.OnRetry(func(n uint, err error) {
			logger := utils.LoggerFromContext(ctx)
			logger.WarnContext(ctx, "retrying telegram send", "attempt", n+1, "error", err.Error())
		}),
	)
}

func (repo TelegramBotApiRepository) SendText(ctx context.Context, chatId int64, text string) error {
	_, err := repo.sendWithRetry(ctx, tgbotapi.NewMessage(chatId, text))
	return errors.Wrap(err, "failed to send telegram message")
}

func (repo TelegramBotApiRepository) SendMarkdown(ctx context.Context, chatId int64, text string) error {
	msg := tgbotapi.NewMessage(chatId, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := repo.sendWithRetry(ctx, msg)
	return errors.Wrap(err, "failed to send telegram markdown message")
}

func (repo TelegramBotApiRepository) SendModeKeyboard(ctx context.Context, chatId int64) (int, error) {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(models.AllStudyModes()))
	for _, mode := range models.AllStudyModes() {
		buttons = append(buttons,
			tgbotapi.NewInlineKeyboardButtonData(mode.Label(), "mode|"+string(mode)))
	}

	msg := tgbotapi.NewMessage(chatId, "Choose how you want me to process your input:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

	sent, err := repo.sendWithRetry(ctx, msg)
	if err != nil {
		return 0, errors.Wrap(err, "failed to send mode keyboard")
	}
	return sent.MessageID, nil
}

func (repo TelegramBotApiRepository) EditMessageText(ctx context.Context, chatId int64, messageId int, text string) error {
	_, err := repo.sendWithRetry(ctx, tgbotapi.NewEditMessageText(chatId, messageId, text))
	return errors.Wrap(err, "failed to edit telegram message")
}

func (repo TelegramBotApiRepository) AnswerCallbackQuery(ctx context.Context, callbackQueryId string) error {
	_, err := repo.bot.Request(tgbotapi.NewCallback(callbackQueryId, ""))
	return errors.Wrap(err, "failed to answer callback query")
}

func (repo TelegramBotApiRepository) SendDocument(ctx context.Context, chatId int64,
	filename string, content []byte, caption string,
) error {
	doc := tgbotapi.NewDocument(chatId, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: content,
	})
	doc.Caption = caption
	_, err := repo.sendWithRetry(ctx, doc)
	return errors.Wrap(err, "failed to send telegram document")
}

func (repo TelegramBotApiRepository) DownloadFile(ctx context.Context, fileId string) ([]byte, error) {
	url, err := repo.bot.GetFileDirectURL(fileId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve telegram file url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build file download request")
	}

	resp, err := repo.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download telegram file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("telegram file download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
