package api

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studykit/studybot-backend/dto"
	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/usecases"
	"github.com/studykit/studybot-backend/utils"
)

func handleListArtifacts(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		userId, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil {
			presentError(c, errors.Wrap(models.BadParameterError,
				"user_id must be a valid integer"))
			return
		}

		limit := 0
		if rawLimit := c.Query("limit"); rawLimit != "" {
			limit, err = strconv.Atoi(rawLimit)
			if err != nil || limit < 0 {
				presentError(c, errors.Wrap(models.BadParameterError,
					"limit must be a non-negative integer"))
				return
			}
		}

		usecase := uc.NewArtifactReaderUsecase()
		artifacts, err := usecase.ListStudyArtifacts(c.Request.Context(),
			models.ListStudyArtifactsFilters{
				UserId: userId,
				Limit:  limit,
			})
		if presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"artifacts": utils.Map(artifacts, dto.AdaptStudyArtifactDto),
		})
	}
}

func handleGetArtifact(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		artifactId, err := uuid.Parse(c.Param("artifact_id"))
		if err != nil {
			presentError(c, errors.Wrap(models.BadParameterError,
				"artifact_id must be a valid uuid"))
			return
		}

		usecase := uc.NewArtifactReaderUsecase()
		artifact, err := usecase.GetStudyArtifact(c.Request.Context(), artifactId)
		if presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"artifact": dto.AdaptStudyArtifactDto(artifact),
		})
	}
}
