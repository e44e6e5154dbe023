package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories/dbmodels"
)

type StudyArtifactRepository interface {
	CreateStudyArtifact(ctx context.Context, exec Executor,
		input models.CreateStudyArtifactInput, newArtifactId uuid.UUID, riverJobId *int64) error
	GetStudyArtifactById(ctx context.Context, exec Executor, id uuid.UUID) (models.StudyArtifact, error)
	GetStudyArtifactByJobId(ctx context.Context, exec Executor, riverJobId int64) (*models.StudyArtifact, error)
	ListStudyArtifacts(ctx context.Context, exec Executor,
		filters models.ListStudyArtifactsFilters) ([]models.StudyArtifact, error)
}

type StudyArtifactRepositoryPostgresql struct{}

func (repo StudyArtifactRepositoryPostgresql) CreateStudyArtifact(
	ctx context.Context,
	exec Executor,
	input models.CreateStudyArtifactInput,
	newArtifactId uuid.UUID,
	riverJobId *int64,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_STUDY_ARTIFACTS).
			Columns(
				"id",
				"user_id",
				"chat_id",
				"task",
				"raw_text",
				"result_text",
				"model",
				"river_job_id",
			).
			Values(
				newArtifactId,
				input.UserId,
				input.ChatId,
				string(input.Mode),
				input.RawText,
				input.GeneratedText,
				input.Model,
				riverJobId,
			),
	)
}

func (repo StudyArtifactRepositoryPostgresql) GetStudyArtifactById(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
) (models.StudyArtifact, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectStudyArtifactColumns...).
			From(dbmodels.TABLE_STUDY_ARTIFACTS).
			Where("id = ?", id),
		dbmodels.AdaptStudyArtifact,
	)
}

// GetStudyArtifactByJobId is the idempotency check for the generation worker:
// a retried job must not insert (nor deliver) a second artifact.
func (repo StudyArtifactRepositoryPostgresql) GetStudyArtifactByJobId(
	ctx context.Context,
	exec Executor,
	riverJobId int64,
) (*models.StudyArtifact, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectStudyArtifactColumns...).
			From(dbmodels.TABLE_STUDY_ARTIFACTS).
			Where("river_job_id = ?", riverJobId),
		dbmodels.AdaptStudyArtifact,
	)
}

func (repo StudyArtifactRepositoryPostgresql) ListStudyArtifacts(
	ctx context.Context,
	exec Executor,
	filters models.ListStudyArtifactsFilters,
) ([]models.StudyArtifact, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectStudyArtifactColumns...).
		From(dbmodels.TABLE_STUDY_ARTIFACTS).
		Where("user_id = ?", filters.UserId).
		OrderBy("created_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(uint64(filters.Limit))
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptStudyArtifact)
}
