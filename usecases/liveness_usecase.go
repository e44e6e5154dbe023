package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/studykit/studybot-backend/repositories"
)

type LivenessUsecase struct {
	executorGetter repositories.ExecutorGetter
}

// Liveness checks the database connection, the one dependency the service
// cannot limp along without.
func (uc LivenessUsecase) Liveness(ctx context.Context) error {
	_, err := uc.executorGetter.GetExecutor().Exec(ctx, "SELECT 1")
	return errors.Wrap(err, "liveness database check failed")
}
