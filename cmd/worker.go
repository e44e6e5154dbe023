package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases"
	"github.com/studykit/studybot-backend/usecases/workers"
	"github.com/studykit/studybot-backend/utils"
)

const sessionCleanupInterval = 1 * time.Hour

// RunTaskQueue runs the river workers: artifact generation and the periodic
// session cleanup.
func RunTaskQueue() error {
	pgConfig := pgConfigFromEnv()
	telegramConfig := telegramConfigFromEnv()
	agentConfig := agentConfigFromEnv()
	workerConfig := struct {
		env           string
		loggingFormat string
		sentryDsn     string
		ocrLanguages  string
	}{
		env:           utils.GetEnv("ENV", "development"),
		loggingFormat: utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:     utils.GetEnv("SENTRY_DSN", ""),
		ocrLanguages:  utils.GetEnv("OCR_LANGUAGES", ""),
	}

	logger := utils.NewLogger(workerConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(workerConfig.sentryDsn, workerConfig.env)
	defer sentry.Flush(3 * time.Second)

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	bot, err := infra.InitializeTelegramBot(telegramConfig)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	sessionTtl := sessionTtlFromEnv()

	riverWorkers := river.NewWorkers()
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		// Must be larger than the time it takes to process a job, the LLM
		// call dominates.
		RescueStuckJobsAfter: 5 * time.Minute,
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			workers.NewSentryMiddleware(),
			workers.NewLoggerMiddleware(logger),
			workers.NewRecoveredMiddleware(),
		},
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(sessionCleanupInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return models.SessionCleanupArgs{Ttl: sessionTtl}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
		Workers: riverWorkers,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	// Sessions are written and deleted by the webhook process; a job must
	// always generate from the latest material, so reads stay uncached here.
	repos := repositories.NewRepositories(pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithTelegramBot(bot),
		repositories.WithUncachedSessions(),
	)

	uc := usecases.NewUsecases(repos, agentConfig,
		usecases.WithSessionTtl(sessionTtl),
		ocrLanguagesOption(workerConfig.ocrLanguages),
	)
	river.AddWorker(riverWorkers, uc.NewGenerateArtifactWorker())
	river.AddWorker(riverWorkers, uc.NewSessionCleanupWorker())

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	logger.InfoContext(ctx, "task queue workers started")

	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	go cleanStop(ctx, sigintOrTerm, riverClient)

	<-riverClient.Stopped()
	logger.InfoContext(ctx, "River client stopped")

	return nil
}

// This stop goroutine waits for SIGINT/SIGTERM and when received, tries to stop
// gracefully by allowing a chance for jobs to finish. But if that isn't
// working, a second SIGINT/SIGTERM will tell it to terminate with prejudice and
// it'll issue a hard stop that cancels the context of all active jobs.
func cleanStop(ctx context.Context, sigintOrTerm chan os.Signal, riverClient *river.Client[pgx.Tx]) {
	logger := utils.LoggerFromContext(ctx)
	<-sigintOrTerm
	logger.InfoContext(ctx, "Received SIGINT/SIGTERM; initiating soft stop (try to wait for jobs to finish)")

	softStopCtx, softStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(ctx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(ctx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Soft stop failed", "error", err)
		panic(err)
	}
	if err == nil {
		logger.InfoContext(ctx, "Soft stop succeeded")
		return
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer hardStopCtxCancel()

	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(ctx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
	} else if err != nil {
		panic(err)
	}
}
