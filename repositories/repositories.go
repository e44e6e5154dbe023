package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repositories struct {
	ExecutorGetter          ExecutorGetter
	StudyArtifactRepository StudyArtifactRepository
	ChatSessionRepository   ChatSessionRepository
	TelegramRepository      TelegramRepository
	TaskQueueRepository     TaskQueueRepository
}

type Option func(*options)

type options struct {
	riverClient      *river.Client[pgx.Tx]
	telegramBot      *tgbotapi.BotAPI
	uncachedSessions bool
}

func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithTelegramBot(bot *tgbotapi.BotAPI) Option {
	return func(o *options) {
		o.telegramBot = bot
	}
}

// WithUncachedSessions makes session reads hit the database every time.
// Processes that consume sessions written by another process need this: a
// per-process cache would serve rows the other process has since replaced or
// deleted.
func WithUncachedSessions() Option {
	return func(o *options) {
		o.uncachedSessions = true
	}
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var sessionRepository ChatSessionRepository = ChatSessionRepositoryPostgresql{}
	if !o.uncachedSessions {
		sessionRepository = NewCachedChatSessionRepository(ChatSessionRepositoryPostgresql{})
	}

	repositories := Repositories{
		ExecutorGetter:          NewExecutorGetter(pool),
		StudyArtifactRepository: StudyArtifactRepositoryPostgresql{},
		ChatSessionRepository:   sessionRepository,
	}

	if o.riverClient != nil {
		repositories.TaskQueueRepository = NewTaskQueueRepository(o.riverClient)
	}
	if o.telegramBot != nil {
		repositories.TelegramRepository = NewTelegramBotApiRepository(o.telegramBot)
	}

	return repositories
}
