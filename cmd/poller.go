package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
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

// RunPoller runs the bot against Telegram's long polling API with the task
// queue workers in the same process. One binary, no public endpoint: the
// deployment shape for development and small installs.
func RunPoller() error {
	pgConfig := pgConfigFromEnv()
	telegramConfig := telegramConfigFromEnv()
	agentConfig := agentConfigFromEnv()
	pollerConfig := struct {
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

	logger := utils.NewLogger(pollerConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(pollerConfig.sentryDsn, pollerConfig.env)
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
			river.QueueDefault: {MaxWorkers: 5},
		},
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

	repos := repositories.NewRepositories(pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithTelegramBot(bot),
	)

	uc := usecases.NewUsecases(repos, agentConfig,
		usecases.WithSessionTtl(sessionTtl),
		ocrLanguagesOption(pollerConfig.ocrLanguages),
	)
	river.AddWorker(riverWorkers, uc.NewGenerateArtifactWorker())
	river.AddWorker(riverWorkers, uc.NewSessionCleanupWorker())

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := bot.GetUpdatesChan(updateConfig)

	logger.InfoContext(ctx, "polling for telegram updates", "bot", bot.Self.UserName)

	intake := uc.NewIntakeUsecase()
	go func() {
		for update := range updates {
			updateCtx, cancel := context.WithTimeout(notify, 2*time.Minute)
			if err := intake.HandleUpdate(updateCtx, update); err != nil {
				utils.LogAndReportSentryError(updateCtx, err)
			}
			cancel()
		}
	}()

	<-notify.Done()
	bot.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := riverClient.Stop(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	return nil
}
