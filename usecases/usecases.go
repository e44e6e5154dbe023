package usecases

import (
	"time"

	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/repositories"
	"github.com/studykit/studybot-backend/usecases/agent"
	"github.com/studykit/studybot-backend/usecases/extraction"
	"github.com/studykit/studybot-backend/usecases/workers"
)

const defaultSessionTtl = 24 * time.Hour

type Usecases struct {
	Repositories repositories.Repositories

	extractor  *extraction.TextExtractor
	agent      *agent.Agent
	sessionTtl time.Duration
}

type Option func(*Usecases)

func WithSessionTtl(ttl time.Duration) Option {
	return func(u *Usecases) {
		u.sessionTtl = ttl
	}
}

func WithOcrLanguages(languages ...string) Option {
	return func(u *Usecases) {
		u.extractor = extraction.NewTextExtractor(extraction.WithLanguages(languages...))
	}
}

func NewUsecases(repos repositories.Repositories, agentConfig infra.AgentConfig, opts ...Option) Usecases {
	usecases := Usecases{
		Repositories: repos,
		extractor:    extraction.NewTextExtractor(),
		agent:        agent.New(agentConfig),
		sessionTtl:   defaultSessionTtl,
	}
	for _, opt := range opts {
		opt(&usecases)
	}
	return usecases
}

func (u Usecases) SessionTtl() time.Duration {
	return u.sessionTtl
}

func (u Usecases) NewIntakeUsecase() IntakeUsecase {
	return IntakeUsecase{
		executorGetter:      u.Repositories.ExecutorGetter,
		sessionRepository:   u.Repositories.ChatSessionRepository,
		telegramRepository:  u.Repositories.TelegramRepository,
		taskQueueRepository: u.Repositories.TaskQueueRepository,
		extractor:           u.extractor,
	}
}

func (u Usecases) NewArtifactReaderUsecase() ArtifactReaderUsecase {
	return ArtifactReaderUsecase{
		executorGetter:     u.Repositories.ExecutorGetter,
		artifactRepository: u.Repositories.StudyArtifactRepository,
	}
}

func (u Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		executorGetter: u.Repositories.ExecutorGetter,
	}
}

func (u Usecases) NewGenerateArtifactWorker() *workers.GenerateArtifactWorker {
	return workers.NewGenerateArtifactWorker(
		u.Repositories.ExecutorGetter,
		u.Repositories.StudyArtifactRepository,
		u.Repositories.ChatSessionRepository,
		u.Repositories.TelegramRepository,
		u.agent,
	)
}

func (u Usecases) NewSessionCleanupWorker() *workers.SessionCleanupWorker {
	return workers.NewSessionCleanupWorker(
		u.Repositories.ExecutorGetter,
		u.Repositories.ChatSessionRepository,
	)
}
