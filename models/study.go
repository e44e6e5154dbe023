package models

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type StudyMode string

const (
	StudyModeFlashcards StudyMode = "flashcards"
	StudyModeNotes      StudyMode = "notes"
	StudyModeQuiz       StudyMode = "quiz"
)

func AllStudyModes() []StudyMode {
	return []StudyMode{StudyModeFlashcards, StudyModeNotes, StudyModeQuiz}
}

func StudyModeFrom(s string) (StudyMode, error) {
	switch StudyMode(s) {
	case StudyModeFlashcards, StudyModeNotes, StudyModeQuiz:
		return StudyMode(s), nil
	}
	return "", errors.Wrapf(ErrUnknownStudyMode, "'%s'", s)
}

// Label is the user-facing name of the mode, used on keyboard buttons and as
// the title line of a delivered artifact.
func (m StudyMode) Label() string {
	switch m {
	case StudyModeFlashcards:
		return "Flashcards"
	case StudyModeNotes:
		return "Notes"
	case StudyModeQuiz:
		return "Quiz"
	}
	return string(m)
}

// MaterialKind identifies how the study material reached the bot.
type MaterialKind string

const (
	MaterialKindText     MaterialKind = "text"
	MaterialKindImage    MaterialKind = "image"
	MaterialKindPdf      MaterialKind = "pdf"
	MaterialKindDocument MaterialKind = "document"
)

// StudyArtifact is one generation result, persisted insert-only.
type StudyArtifact struct {
	Id            uuid.UUID
	UserId        int64
	ChatId        int64
	Mode          StudyMode
	RawText       string
	GeneratedText string
	Model         string
	CreatedAt     time.Time
}

type CreateStudyArtifactInput struct {
	UserId        int64
	ChatId        int64
	Mode          StudyMode
	RawText       string
	GeneratedText string
	Model         string
}

type ListStudyArtifactsFilters struct {
	UserId int64
	Limit  int
}
