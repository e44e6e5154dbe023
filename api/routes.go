package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studykit/studybot-backend/usecases"
)

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases) {
	r.GET("/liveness", handleLivenessProbe(uc))

	r.POST("/telegram/webhook/:webhook_secret", handleTelegramWebhook(conf, uc))

	r.GET("/artifacts", handleListArtifacts(uc))
	r.GET("/artifacts/:artifact_id", handleGetArtifact(uc))

	if conf.EnablePrometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
