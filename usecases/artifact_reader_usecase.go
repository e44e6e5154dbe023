package usecases

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
)

const defaultArtifactListLimit = 50

// ArtifactReaderUsecase serves the read-only HTTP view over generated
// artifacts.
type ArtifactReaderUsecase struct {
	executorGetter     repositories.ExecutorGetter
	artifactRepository repositories.StudyArtifactRepository
}

func (uc ArtifactReaderUsecase) ListStudyArtifacts(ctx context.Context,
	filters models.ListStudyArtifactsFilters,
) ([]models.StudyArtifact, error) {
	if filters.UserId == 0 {
		return nil, errors.Wrap(models.BadParameterError, "user_id is required")
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultArtifactListLimit
	}

	return uc.artifactRepository.ListStudyArtifacts(ctx, uc.executorGetter.GetExecutor(), filters)
}

func (uc ArtifactReaderUsecase) GetStudyArtifact(ctx context.Context, id uuid.UUID) (models.StudyArtifact, error) {
	return uc.artifactRepository.GetStudyArtifactById(ctx, uc.executorGetter.GetExecutor(), id)
}
