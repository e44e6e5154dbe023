package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/models"
)

func TestAdaptStudyArtifactDto(t *testing.T) {
	artifactId := uuid.New()
	createdAt := time.Now()

	artifact := models.StudyArtifact{
		Id:            artifactId,
		UserId:        34,
		ChatId:        12,
		Mode:          models.StudyModeQuiz,
		RawText:       "raw material",
		GeneratedText: "generated quiz",
		Model:         "gemini-2.0-flash",
		CreatedAt:     createdAt,
	}

	result := AdaptStudyArtifactDto(artifact)

	assert.Equal(t, artifactId, result.Id)
	assert.Equal(t, "quiz", result.Mode)
	assert.Equal(t, "generated quiz", result.ResultText)
	assert.True(t, result.Model.Valid)
	assert.Equal(t, "gemini-2.0-flash", result.Model.String)
}

func TestAdaptStudyArtifactDtoMissingModel(t *testing.T) {
	result := AdaptStudyArtifactDto(models.StudyArtifact{Mode: models.StudyModeNotes})

	assert.False(t, result.Model.Valid)

	serialized, err := json.Marshal(result)
	assert.NoError(t, err)
	assert.Contains(t, string(serialized), `"model":null`)
}
