package agent

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/models"
)

func TestPreparePrompt(t *testing.T) {
	material := "The mitochondria is the powerhouse of the cell."

	tests := []struct {
		mode     models.StudyMode
		contains string
	}{
		{mode: models.StudyModeFlashcards, contains: "flashcards"},
		{mode: models.StudyModeNotes, contains: "study notes"},
		{mode: models.StudyModeQuiz, contains: "quiz"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			prompt, err := preparePrompt(tt.mode, material)
			assert.NoError(t, err)
			assert.Contains(t, prompt, material)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestPreparePromptUnknownMode(t *testing.T) {
	_, err := preparePrompt(models.StudyMode("summary"), "material")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.BadParameterError))
}
