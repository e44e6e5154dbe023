package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

type DBStudyArtifact struct {
	Id            uuid.UUID `db:"id"`
	UserId        int64     `db:"user_id"`
	ChatId        int64     `db:"chat_id"`
	Task          string    `db:"task"`
	RawText       string    `db:"raw_text"`
	ResultText    string    `db:"result_text"`
	Model         string    `db:"model"`
	RiverJobId    *int64    `db:"river_job_id"`
	CreatedAt     time.Time `db:"created_at"`
}

const TABLE_STUDY_ARTIFACTS = "study_artifacts"

var SelectStudyArtifactColumns = utils.ColumnList[DBStudyArtifact]()

func AdaptStudyArtifact(db DBStudyArtifact) (models.StudyArtifact, error) {
	mode, err := models.StudyModeFrom(db.Task)
	if err != nil {
		return models.StudyArtifact{}, err
	}

	return models.StudyArtifact{
		Id:            db.Id,
		UserId:        db.UserId,
		ChatId:        db.ChatId,
		Mode:          mode,
		RawText:       db.RawText,
		GeneratedText: db.ResultText,
		Model:         db.Model,
		CreatedAt:     db.CreatedAt,
	}, nil
}
