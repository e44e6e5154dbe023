package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/studykit/studybot-backend/api"
	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases"
	"github.com/studykit/studybot-backend/utils"
)

// RunServer serves the Telegram webhook and the artifact read API. Updates are
// acknowledged immediately; generation happens in the worker process.
func RunServer() error {
	apiConfig := api.Configuration{
		Env:                   utils.GetEnv("ENV", "development"),
		AppName:               appName,
		Port:                  utils.GetEnv("PORT", "10000"),
		RequestLoggingLevel:   utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		DefaultTimeout:        time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 15)) * time.Second,
		TelegramWebhookSecret: utils.GetRequiredEnv[string]("TELEGRAM_WEBHOOK_SECRET"),
		EnablePrometheus:      utils.GetEnv("ENABLE_PROMETHEUS", true),
	}
	pgConfig := pgConfigFromEnv()
	telegramConfig := telegramConfigFromEnv()
	agentConfig := agentConfigFromEnv()
	serverConfig := struct {
		loggingFormat string
		sentryDsn     string
		ocrLanguages  string
	}{
		loggingFormat: utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:     utils.GetEnv("SENTRY_DSN", ""),
		ocrLanguages:  utils.GetEnv("OCR_LANGUAGES", ""),
	}

	logger := utils.NewLogger(serverConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(serverConfig.sentryDsn, apiConfig.Env)
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

	// insert-only client: the server enqueues jobs, the worker runs them
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repos := repositories.NewRepositories(pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithTelegramBot(bot),
	)

	uc := usecases.NewUsecases(repos, agentConfig,
		usecases.WithSessionTtl(sessionTtlFromEnv()),
		ocrLanguagesOption(serverConfig.ocrLanguages),
	)

	router := api.InitRouterMiddlewares(ctx, apiConfig)
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(ctx,
			errors.Wrap(err, "Error while shutting down the server"))
		return err
	}

	return nil
}

func ocrLanguagesOption(languages string) usecases.Option {
	if languages == "" {
		return func(*usecases.Usecases) {}
	}
	return usecases.WithOcrLanguages(splitCommaList(languages)...)
}
