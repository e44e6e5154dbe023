package usecases

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases/extraction"
	"github.com/studykit/studybot-backend/usecases/metrics"
	"github.com/studykit/studybot-backend/utils"
)

const welcomeMessage = `Hi! Send me study material and I will turn it into flashcards, notes or a quiz.

You can send:
- plain text
- a photo of a page or slide
- a PDF or text document

Then pick what you want me to make out of it.`

const emptyExtractionMessage = "I couldn't read any text from that. " +
	"Try a sharper photo or a document with selectable text."

const noPendingMaterialMessage = "No input found to process. Please send your material again."

// IntakeUsecase handles every inbound Telegram update: it extracts text from
// whatever the user sent, stores it as the chat's pending session, and turns a
// mode pick into a queued generation job.
type IntakeUsecase struct {
	executorGetter      repositories.ExecutorGetter
	sessionRepository   repositories.ChatSessionRepository
	telegramRepository  repositories.TelegramRepository
	taskQueueRepository repositories.TaskQueueRepository
	extractor           *extraction.TextExtractor
}

func (uc IntakeUsecase) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return uc.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		return uc.handleMessage(ctx, update.Message)
	default:
		// edits, channel posts, member updates: nothing for us to do
		return nil
	}
}

func (uc IntakeUsecase) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	logger := utils.LoggerFromContext(ctx).With("chat_id", message.Chat.ID)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	if message.IsCommand() {
		return uc.handleCommand(ctx, message)
	}

	kind, text, err := uc.extractMaterial(ctx, message)
	if err != nil {
		return err
	}
	if kind == "" {
		// stickers, voice notes, locations...
		return uc.telegramRepository.SendText(ctx, message.Chat.ID,
			"Please send text, a photo or a document.")
	}

	metrics.UpdatesReceived.WithLabelValues(string(kind)).Inc()

	if text == "" {
		metrics.ExtractionFailures.WithLabelValues(string(kind)).Inc()
		return uc.telegramRepository.SendText(ctx, message.Chat.ID, emptyExtractionMessage)
	}

	err = uc.sessionRepository.UpsertChatSession(ctx, uc.executorGetter.GetExecutor(),
		models.UpsertChatSessionInput{
			ChatId:        message.Chat.ID,
			UserId:        message.From.ID,
			Kind:          kind,
			ExtractedText: text,
		})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Stored study material", "kind", kind, "text_length", len(text))

	_, err = uc.telegramRepository.SendModeKeyboard(ctx, message.Chat.ID)
	return err
}

func (uc IntakeUsecase) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start", "help":
		return uc.telegramRepository.SendText(ctx, message.Chat.ID, welcomeMessage)
	default:
		return uc.telegramRepository.SendText(ctx, message.Chat.ID,
			"Unknown command. Send /help to see what I can do.")
	}
}

// extractMaterial pulls text out of the message. An empty kind means the
// message carried nothing we know how to read.
func (uc IntakeUsecase) extractMaterial(ctx context.Context, message *tgbotapi.Message) (models.MaterialKind, string, error) {
	switch {
	case message.Text != "":
		text, err := uc.extractor.Extract(ctx, models.MaterialKindText, []byte(message.Text))
		return models.MaterialKindText, text, err

	case len(message.Photo) > 0:
		// photo sizes are ordered smallest to largest
		photo := message.Photo[len(message.Photo)-1]
		data, err := uc.telegramRepository.DownloadFile(ctx, photo.FileID)
		if err != nil {
			return models.MaterialKindImage, "", err
		}
		text, err := uc.extractor.Extract(ctx, models.MaterialKindImage, data)
		return models.MaterialKindImage, text, err

	case message.Document != nil:
		kind := models.MaterialKindDocument
		if isPdfDocument(message.Document) {
			kind = models.MaterialKindPdf
		}
		data, err := uc.telegramRepository.DownloadFile(ctx, message.Document.FileID)
		if err != nil {
			return kind, "", err
		}
		text, err := uc.extractor.Extract(ctx, kind, data)
		return kind, text, err

	default:
		return "", "", nil
	}
}

func isPdfDocument(doc *tgbotapi.Document) bool {
	return doc.MimeType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(doc.FileName), ".pdf")
}

func (uc IntakeUsecase) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil {
		return nil
	}
	chatId := callback.Message.Chat.ID

	logger := utils.LoggerFromContext(ctx).With("chat_id", chatId)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	// stop the client-side spinner whatever happens next
	if err := uc.telegramRepository.AnswerCallbackQuery(ctx, callback.ID); err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}

	mode, err := parseModeCallback(callback.Data)
	if err != nil {
		return err
	}

	session, err := uc.sessionRepository.GetChatSession(ctx, uc.executorGetter.GetExecutor(), chatId)
	if err != nil {
		return err
	}
	if session == nil {
		logger.InfoContext(ctx, "Mode picked without pending material", "mode", mode)
		return uc.telegramRepository.EditMessageText(ctx, chatId,
			callback.Message.MessageID, noPendingMaterialMessage)
	}

	progressMessageId := callback.Message.MessageID
	if err := uc.telegramRepository.EditMessageText(ctx, chatId, progressMessageId,
		"Generating "+string(mode)+", please wait..."); err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}

	return uc.executorGetter.Transaction(ctx, func(tx repositories.Transaction) error {
		return uc.taskQueueRepository.EnqueueGenerateArtifactTask(ctx, tx, models.GenerateArtifactArgs{
			ChatId:            chatId,
			UserId:            callback.From.ID,
			ProgressMessageId: progressMessageId,
			Mode:              mode,
		})
	})
}

func parseModeCallback(data string) (models.StudyMode, error) {
	prefix, value, found := strings.Cut(data, "|")
	if !found || prefix != "mode" {
		return "", errors.Wrapf(models.BadParameterError, "malformed callback data '%s'", data)
	}
	return models.StudyModeFrom(value)
}
