package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gin-gonic/gin"

	"github.com/studykit/studybot-backend/usecases"
	"github.com/studykit/studybot-backend/utils"
)

// updateProcessingTimeout bounds the work done for a single update once the
// webhook has been acknowledged. OCR on a large scanned document is the slow
// path.
const updateProcessingTimeout = 2 * time.Minute

// handleTelegramWebhook receives update deliveries from Telegram. The secret
// path segment is the only authentication Telegram supports for webhooks; a
// mismatch is answered with a plain 404 so the endpoint does not advertise
// itself.
//
// The update is acknowledged immediately and processed in the background:
// Telegram redelivers on any non-2xx or slow response, and OCR or a file
// download can easily outlast its patience.
func handleTelegramWebhook(conf Configuration, uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		secret := c.Param("webhook_secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(conf.TelegramWebhookSecret)) != 1 {
			c.Status(http.StatusNotFound)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
			// malformed payloads are acknowledged too, redelivery cannot fix them
			utils.LoggerFromContext(c.Request.Context()).
				WarnContext(c.Request.Context(), "Discarding malformed webhook payload", "error", err.Error())
			c.Status(http.StatusOK)
			return
		}

		logger := utils.LoggerFromContext(c.Request.Context())

		go func() {
			ctx, cancel := context.WithTimeout(
				utils.StoreLoggerInContext(context.Background(), logger),
				updateProcessingTimeout)
			defer cancel()

			usecase := uc.NewIntakeUsecase()
			if err := usecase.HandleUpdate(ctx, update); err != nil {
				utils.LogAndReportSentryError(ctx, err)
			}
		}()

		c.Status(http.StatusOK)
	}
}
