package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases/extraction"
)

type fakeSessionRepository struct {
	sessions map[int64]models.ChatSession
	upserts  []models.UpsertChatSessionInput
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[int64]models.ChatSession)}
}

func (f *fakeSessionRepository) UpsertChatSession(ctx context.Context, exec repositories.Executor,
	input models.UpsertChatSessionInput,
) error {
	f.upserts = append(f.upserts, input)
	f.sessions[input.ChatId] = models.ChatSession{
		ChatId:        input.ChatId,
		UserId:        input.UserId,
		Kind:          input.Kind,
		ExtractedText: input.ExtractedText,
	}
	return nil
}

func (f *fakeSessionRepository) GetChatSession(ctx context.Context, exec repositories.Executor,
	chatId int64,
) (*models.ChatSession, error) {
	session, ok := f.sessions[chatId]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (f *fakeSessionRepository) DeleteChatSession(ctx context.Context, exec repositories.Executor, chatId int64) error {
	delete(f.sessions, chatId)
	return nil
}

func (f *fakeSessionRepository) DeleteChatSessionsOlderThan(ctx context.Context, exec repositories.Executor,
	ttl time.Duration,
) (int64, error) {
	return 0, nil
}

type fakeTelegram struct {
	texts         []string
	keyboardSends int
	edits         []string
	answered      []string
}

func (f *fakeTelegram) SendText(ctx context.Context, chatId int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTelegram) SendMarkdown(ctx context.Context, chatId int64, text string) error {
	return nil
}

func (f *fakeTelegram) SendModeKeyboard(ctx context.Context, chatId int64) (int, error) {
	f.keyboardSends++
	return 7, nil
}

func (f *fakeTelegram) EditMessageText(ctx context.Context, chatId int64, messageId int, text string) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTelegram) AnswerCallbackQuery(ctx context.Context, callbackQueryId string) error {
	f.answered = append(f.answered, callbackQueryId)
	return nil
}

func (f *fakeTelegram) SendDocument(ctx context.Context, chatId int64,
	filename string, content []byte, caption string,
) error {
	return nil
}

func (f *fakeTelegram) DownloadFile(ctx context.Context, fileId string) ([]byte, error) {
	return []byte("downloaded " + fileId), nil
}

func newTestIntakeUsecase(sessions *fakeSessionRepository, telegram *fakeTelegram) IntakeUsecase {
	return IntakeUsecase{
		sessionRepository:  sessions,
		telegramRepository: telegram,
		extractor:          extraction.NewTextExtractor(),
	}
}

func textMessage(chatId, userId int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatId},
		From: &tgbotapi.User{ID: userId},
		Text: text,
	}
}

func TestHandleUpdateTextMessage(t *testing.T) {
	sessions := newFakeSessionRepository()
	telegram := &fakeTelegram{}
	uc := newTestIntakeUsecase(sessions, telegram)

	err := uc.HandleUpdate(context.Background(), tgbotapi.Update{
		Message: textMessage(12, 34, "study this material"),
	})
	assert.NoError(t, err)

	if assert.Len(t, sessions.upserts, 1) {
		assert.Equal(t, int64(12), sessions.upserts[0].ChatId)
		assert.Equal(t, int64(34), sessions.upserts[0].UserId)
		assert.Equal(t, models.MaterialKindText, sessions.upserts[0].Kind)
		assert.Equal(t, "study this material", sessions.upserts[0].ExtractedText)
	}
	assert.Equal(t, 1, telegram.keyboardSends)
}

func TestHandleUpdateStartCommand(t *testing.T) {
	sessions := newFakeSessionRepository()
	telegram := &fakeTelegram{}
	uc := newTestIntakeUsecase(sessions, telegram)

	message := textMessage(12, 34, "/start")
	message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	err := uc.HandleUpdate(context.Background(), tgbotapi.Update{Message: message})
	assert.NoError(t, err)

	assert.Empty(t, sessions.upserts)
	assert.Equal(t, 0, telegram.keyboardSends)
	if assert.Len(t, telegram.texts, 1) {
		assert.Contains(t, telegram.texts[0], "Send me study material")
	}
}

func TestHandleUpdateUnsupportedContent(t *testing.T) {
	sessions := newFakeSessionRepository()
	telegram := &fakeTelegram{}
	uc := newTestIntakeUsecase(sessions, telegram)

	err := uc.HandleUpdate(context.Background(), tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat:    &tgbotapi.Chat{ID: 12},
			From:    &tgbotapi.User{ID: 34},
			Sticker: &tgbotapi.Sticker{FileID: "sticker"},
		},
	})
	assert.NoError(t, err)

	assert.Empty(t, sessions.upserts)
	if assert.Len(t, telegram.texts, 1) {
		assert.Contains(t, telegram.texts[0], "Please send text, a photo or a document")
	}
}

func TestHandleCallbackQueryWithoutSession(t *testing.T) {
	sessions := newFakeSessionRepository()
	telegram := &fakeTelegram{}
	uc := newTestIntakeUsecase(sessions, telegram)

	err := uc.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: 34},
			Message: &tgbotapi.Message{
				MessageID: 7,
				Chat:      &tgbotapi.Chat{ID: 12},
			},
			Data: "mode|notes",
		},
	})
	assert.NoError(t, err)

	assert.Equal(t, []string{"cb-1"}, telegram.answered)
	assert.Empty(t, telegram.texts)
	if assert.Len(t, telegram.edits, 1) {
		assert.Contains(t, telegram.edits[0], "No input found to process")
	}
}

func TestHandleCallbackQueryMalformedData(t *testing.T) {
	sessions := newFakeSessionRepository()
	telegram := &fakeTelegram{}
	uc := newTestIntakeUsecase(sessions, telegram)

	err := uc.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-2",
			From: &tgbotapi.User{ID: 34},
			Message: &tgbotapi.Message{
				MessageID: 7,
				Chat:      &tgbotapi.Chat{ID: 12},
			},
			Data: "unexpected",
		},
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.BadParameterError))
}

func TestParseModeCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    models.StudyMode
		wantErr bool
	}{
		{data: "mode|flashcards", want: models.StudyModeFlashcards},
		{data: "mode|notes", want: models.StudyModeNotes},
		{data: "mode|quiz", want: models.StudyModeQuiz},
		{data: "mode|summary", wantErr: true},
		{data: "other|notes", wantErr: true},
		{data: "notes", wantErr: true},
		{data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := parseModeCallback(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPdfDocument(t *testing.T) {
	assert.True(t, isPdfDocument(&tgbotapi.Document{MimeType: "application/pdf"}))
	assert.True(t, isPdfDocument(&tgbotapi.Document{FileName: "Lecture.PDF"}))
	assert.False(t, isPdfDocument(&tgbotapi.Document{MimeType: "text/plain", FileName: "notes.txt"}))
}
