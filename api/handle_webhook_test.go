package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases"
)

type fakeArtifactRepository struct {
	artifacts []models.StudyArtifact
}

func (f *fakeArtifactRepository) CreateStudyArtifact(ctx context.Context, exec repositories.Executor,
	input models.CreateStudyArtifactInput, newArtifactId uuid.UUID, riverJobId *int64,
) error {
	return nil
}

func (f *fakeArtifactRepository) GetStudyArtifactById(ctx context.Context, exec repositories.Executor,
	id uuid.UUID,
) (models.StudyArtifact, error) {
	for _, artifact := range f.artifacts {
		if artifact.Id == id {
			return artifact, nil
		}
	}
	return models.StudyArtifact{}, models.NotFoundError
}

func (f *fakeArtifactRepository) GetStudyArtifactByJobId(ctx context.Context, exec repositories.Executor,
	riverJobId int64,
) (*models.StudyArtifact, error) {
	return nil, nil
}

func (f *fakeArtifactRepository) ListStudyArtifacts(ctx context.Context, exec repositories.Executor,
	filters models.ListStudyArtifactsFilters,
) ([]models.StudyArtifact, error) {
	return f.artifacts, nil
}

func newTestRouter(t *testing.T, artifacts *fakeArtifactRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := Configuration{
		Env:                   "test",
		AppName:               "studybot-backend",
		Port:                  "10000",
		TelegramWebhookSecret: "good-secret",
	}
	uc := usecases.NewUsecases(repositories.Repositories{
		StudyArtifactRepository: artifacts,
	}, infra.AgentConfig{
		ProviderType: infra.AgentProviderTypeAIStudio,
		DefaultModel: "gemini-2.0-flash",
	})

	r := gin.New()
	addRoutes(r, conf, uc)
	return r
}

func TestHandleTelegramWebhook(t *testing.T) {
	router := newTestRouter(t, &fakeArtifactRepository{})

	t.Run("wrong secret is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/wrong-secret",
			strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("valid secret acknowledges the update", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/good-secret",
			strings.NewReader(`{"update_id": 1}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed payload is acknowledged, not redelivered", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/good-secret",
			strings.NewReader(`not json`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	// give the detached update goroutine time to finish before test teardown
	time.Sleep(50 * time.Millisecond)
}
