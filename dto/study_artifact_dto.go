package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/studykit/studybot-backend/models"
)

type StudyArtifactDto struct {
	Id         uuid.UUID   `json:"id"`
	UserId     int64       `json:"user_id"`
	ChatId     int64       `json:"chat_id"`
	Mode       string      `json:"mode"`
	RawText    string      `json:"raw_text"`
	ResultText string      `json:"result_text"`
	Model      null.String `json:"model"`
	CreatedAt  time.Time   `json:"created_at"`
}

func AdaptStudyArtifactDto(artifact models.StudyArtifact) StudyArtifactDto {
	return StudyArtifactDto{
		Id:         artifact.Id,
		UserId:     artifact.UserId,
		ChatId:     artifact.ChatId,
		Mode:       string(artifact.Mode),
		RawText:    artifact.RawText,
		ResultText: artifact.GeneratedText,
		Model:      null.NewString(artifact.Model, artifact.Model != ""),
		CreatedAt:  artifact.CreatedAt,
	}
}
