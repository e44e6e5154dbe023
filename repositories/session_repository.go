package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories/dbmodels"
)

type ChatSessionRepository interface {
	UpsertChatSession(ctx context.Context, exec Executor, input models.UpsertChatSessionInput) error
	GetChatSession(ctx context.Context, exec Executor, chatId int64) (*models.ChatSession, error)
	DeleteChatSession(ctx context.Context, exec Executor, chatId int64) error
	DeleteChatSessionsOlderThan(ctx context.Context, exec Executor, ttl time.Duration) (int64, error)
}

type ChatSessionRepositoryPostgresql struct{}

func (repo ChatSessionRepositoryPostgresql) UpsertChatSession(
	ctx context.Context,
	exec Executor,
	input models.UpsertChatSessionInput,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_CHAT_SESSIONS).
			Columns(
				"chat_id",
				"user_id",
				"material_kind",
				"extracted_text",
			).
			Values(
				input.ChatId,
				input.UserId,
				string(input.Kind),
				input.ExtractedText,
			).
			Suffix(`ON CONFLICT (chat_id) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				material_kind = EXCLUDED.material_kind,
				extracted_text = EXCLUDED.extracted_text,
				updated_at = NOW()`),
	)
}

func (repo ChatSessionRepositoryPostgresql) GetChatSession(
	ctx context.Context,
	exec Executor,
	chatId int64,
) (*models.ChatSession, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectChatSessionColumns...).
			From(dbmodels.TABLE_CHAT_SESSIONS).
			Where("chat_id = ?", chatId),
		dbmodels.AdaptChatSession,
	)
}

func (repo ChatSessionRepositoryPostgresql) DeleteChatSession(
	ctx context.Context,
	exec Executor,
	chatId int64,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Delete(dbmodels.TABLE_CHAT_SESSIONS).
			Where("chat_id = ?", chatId),
	)
}

func (repo ChatSessionRepositoryPostgresql) DeleteChatSessionsOlderThan(
	ctx context.Context,
	exec Executor,
	ttl time.Duration,
) (int64, error) {
	query := NewQueryBuilder().
		Delete(dbmodels.TABLE_CHAT_SESSIONS).
		Where(squirrel.Expr("updated_at < NOW() - ?::interval", ttl.String()))

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
