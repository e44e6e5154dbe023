package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases/metrics"
	"github.com/studykit/studybot-backend/utils"
)

// maxInlineReplyRunes is the largest artifact delivered as a chat message.
// Anything longer goes out as a .txt document, well under Telegram's 4096
// character message cap even after the title line.
const maxInlineReplyRunes = 1900

type artifactGenerator interface {
	GenerateStudyArtifact(ctx context.Context, mode models.StudyMode, material string) (string, string, error)
}

type transactionFactory interface {
	GetExecutor() repositories.Executor
	Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error
}

type GenerateArtifactWorker struct {
	river.WorkerDefaults[models.GenerateArtifactArgs]

	executorGetter     transactionFactory
	artifactRepository repositories.StudyArtifactRepository
	sessionRepository  repositories.ChatSessionRepository
	telegramRepository repositories.TelegramRepository
	agent              artifactGenerator
}

func NewGenerateArtifactWorker(
	executorGetter transactionFactory,
	artifactRepository repositories.StudyArtifactRepository,
	sessionRepository repositories.ChatSessionRepository,
	telegramRepository repositories.TelegramRepository,
	agent artifactGenerator,
) *GenerateArtifactWorker {
	return &GenerateArtifactWorker{
		executorGetter:     executorGetter,
		artifactRepository: artifactRepository,
		sessionRepository:  sessionRepository,
		telegramRepository: telegramRepository,
		agent:              agent,
	}
}

func (w *GenerateArtifactWorker) Timeout(job *river.Job[models.GenerateArtifactArgs]) time.Duration {
	return 2 * time.Minute
}

func (w *GenerateArtifactWorker) Work(ctx context.Context, job *river.Job[models.GenerateArtifactArgs]) error {
	logger := utils.LoggerFromContext(ctx).With(
		"chat_id", job.Args.ChatId, "mode", job.Args.Mode, "job_id", job.ID)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	exec := w.executorGetter.GetExecutor()

	// A retried job that already inserted its artifact must not generate or
	// deliver a second time.
	existing, err := w.artifactRepository.GetStudyArtifactByJobId(ctx, exec, job.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.InfoContext(ctx, "Artifact already generated for this job, delivering stored result")
		return w.deliver(ctx, job.Args, existing.GeneratedText)
	}

	session, err := w.sessionRepository.GetChatSession(ctx, exec, job.Args.ChatId)
	if err != nil {
		return err
	}
	if session == nil {
		logger.InfoContext(ctx, "No session material for chat, notifying user")
		return w.telegramRepository.EditMessageText(ctx, job.Args.ChatId,
			job.Args.ProgressMessageId, "No input found to process. Please send your material again.")
	}

	generatedText, model, err := w.agent.GenerateStudyArtifact(ctx, job.Args.Mode, session.ExtractedText)
	if err != nil {
		if job.Attempt >= job.MaxAttempts {
			w.notifyFailure(ctx, job.Args)
		}
		return err
	}

	err = w.executorGetter.Transaction(ctx, func(tx repositories.Transaction) error {
		jobId := job.ID
		if err := w.artifactRepository.CreateStudyArtifact(ctx, tx, models.CreateStudyArtifactInput{
			UserId:        job.Args.UserId,
			ChatId:        job.Args.ChatId,
			Mode:          job.Args.Mode,
			RawText:       session.ExtractedText,
			GeneratedText: generatedText,
			Model:         model,
		}, uuid.New(), &jobId); err != nil {
			return err
		}
		return w.sessionRepository.DeleteChatSession(ctx, tx, job.Args.ChatId)
	})
	if err != nil {
		return err
	}

	metrics.ArtifactsGenerated.WithLabelValues(string(job.Args.Mode)).Inc()
	logger.InfoContext(ctx, "Study artifact generated", "model", model,
		"result_length", len(generatedText))

	return w.deliver(ctx, job.Args, generatedText)
}

// deliver sends the artifact back into the chat: short results inline as a
// Markdown message with a bold title, long ones as a text document.
func (w *GenerateArtifactWorker) deliver(ctx context.Context, args models.GenerateArtifactArgs, text string) error {
	if len([]rune(text)) <= maxInlineReplyRunes {
		return w.telegramRepository.SendMarkdown(ctx, args.ChatId,
			fmt.Sprintf("*%s*\n\n%s", args.Mode.Label(), text))
	}

	filename := fmt.Sprintf("%s.txt", args.Mode)
	caption := fmt.Sprintf("%s saved", args.Mode.Label())
	return w.telegramRepository.SendDocument(ctx, args.ChatId, filename, []byte(text), caption)
}

// notifyFailure tells the user the generation gave up. Best effort, delivery
// errors here only get logged.
func (w *GenerateArtifactWorker) notifyFailure(ctx context.Context, args models.GenerateArtifactArgs) {
	err := w.telegramRepository.EditMessageText(ctx, args.ChatId, args.ProgressMessageId,
		"Something went wrong while generating your "+string(args.Mode)+". Please try again.")
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}
}
