package dbmodels

import (
	"time"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

type DBChatSession struct {
	ChatId        int64     `db:"chat_id"`
	UserId        int64     `db:"user_id"`
	MaterialKind  string    `db:"material_kind"`
	ExtractedText string    `db:"extracted_text"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const TABLE_CHAT_SESSIONS = "chat_sessions"

var SelectChatSessionColumns = utils.ColumnList[DBChatSession]()

func AdaptChatSession(db DBChatSession) (models.ChatSession, error) {
	return models.ChatSession{
		ChatId:        db.ChatId,
		UserId:        db.UserId,
		Kind:          models.MaterialKind(db.MaterialKind),
		ExtractedText: db.ExtractedText,
		CreatedAt:     db.CreatedAt,
		UpdatedAt:     db.UpdatedAt,
	}, nil
}
