package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/models"
)

func TestHandleListArtifacts(t *testing.T) {
	artifactId := uuid.New()
	router := newTestRouter(t, &fakeArtifactRepository{
		artifacts: []models.StudyArtifact{{
			Id:            artifactId,
			UserId:        34,
			ChatId:        12,
			Mode:          models.StudyModeNotes,
			RawText:       "raw",
			GeneratedText: "generated",
			Model:         "gemini-2.0-flash",
			CreatedAt:     time.Now(),
		}},
	})

	t.Run("nominal", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts?user_id=34", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Artifacts []struct {
				Id   uuid.UUID `json:"id"`
				Mode string    `json:"mode"`
			} `json:"artifacts"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		if assert.Len(t, body.Artifacts, 1) {
			assert.Equal(t, artifactId, body.Artifacts[0].Id)
			assert.Equal(t, "notes", body.Artifacts[0].Mode)
		}
	})

	t.Run("missing user_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts?user_id=34&limit=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGetArtifact(t *testing.T) {
	artifactId := uuid.New()
	router := newTestRouter(t, &fakeArtifactRepository{
		artifacts: []models.StudyArtifact{{
			Id:            artifactId,
			UserId:        34,
			ChatId:        12,
			Mode:          models.StudyModeQuiz,
			GeneratedText: "generated quiz",
			CreatedAt:     time.Now(),
		}},
	})

	t.Run("nominal", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+artifactId.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Artifact struct {
				Id         uuid.UUID `json:"id"`
				ResultText string    `json:"result_text"`
			} `json:"artifact"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, artifactId, body.Artifact.Id)
		assert.Equal(t, "generated quiz", body.Artifact.ResultText)
	})

	t.Run("unknown artifact", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+uuid.NewString(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/artifacts/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
