package workers

import (
	"context"

	"github.com/riverqueue/river"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/utils"
)

// SessionCleanupWorker drops sessions whose material was never turned into an
// artifact. Without it, chats that sent material and never picked a mode would
// accumulate rows forever.
type SessionCleanupWorker struct {
	river.WorkerDefaults[models.SessionCleanupArgs]

	executorGetter    transactionFactory
	sessionRepository repositories.ChatSessionRepository
}

func NewSessionCleanupWorker(
	executorGetter transactionFactory,
	sessionRepository repositories.ChatSessionRepository,
) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		executorGetter:    executorGetter,
		sessionRepository: sessionRepository,
	}
}

func (w *SessionCleanupWorker) Work(ctx context.Context, job *river.Job[models.SessionCleanupArgs]) error {
	logger := utils.LoggerFromContext(ctx)

	deleted, err := w.sessionRepository.DeleteChatSessionsOlderThan(
		ctx, w.executorGetter.GetExecutor(), job.Args.Ttl)
	if err != nil {
		return err
	}

	if deleted > 0 {
		logger.InfoContext(ctx, "Cleaned up stale chat sessions",
			"deleted", deleted, "ttl", job.Args.Ttl.String())
	}
	return nil
}
