package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

const (
	// at 1sec*attempt^4: 3 attempts stay under two minutes, enough for
	// transient LLM hiccups without generating an hour-old reply
	nbRetriesGenerateArtifact = 3
	priorityGenerateArtifact  = 2
)

type TaskQueueRepository interface {
	EnqueueGenerateArtifactTask(
		ctx context.Context,
		tx Transaction,
		args models.GenerateArtifactArgs,
	) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueGenerateArtifactTask(
	ctx context.Context,
	tx Transaction,
	args models.GenerateArtifactArgs,
) error {
	res, err := r.client.InsertTx(ctx, tx.RawTx(), args, &river.InsertOpts{
		MaxAttempts: nbRetriesGenerateArtifact,
		Priority:    priorityGenerateArtifact,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return err
	}

	logger := utils.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Enqueued artifact generation task",
		"chat_id", args.ChatId, "mode", args.Mode, "job_id", res.Job.ID)
	return nil
}
