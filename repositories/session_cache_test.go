package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/stretchr/testify/assert"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories/clock"
)

type stubSessionRepository struct {
	sessions map[int64]models.ChatSession
	getCalls int
}

func newStubSessionRepository() *stubSessionRepository {
	return &stubSessionRepository{sessions: make(map[int64]models.ChatSession)}
}

func (s *stubSessionRepository) UpsertChatSession(ctx context.Context, exec Executor,
	input models.UpsertChatSessionInput,
) error {
	s.sessions[input.ChatId] = models.ChatSession{
		ChatId:        input.ChatId,
		UserId:        input.UserId,
		Kind:          input.Kind,
		ExtractedText: input.ExtractedText,
	}
	return nil
}

func (s *stubSessionRepository) GetChatSession(ctx context.Context, exec Executor,
	chatId int64,
) (*models.ChatSession, error) {
	s.getCalls++
	session, ok := s.sessions[chatId]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *stubSessionRepository) DeleteChatSession(ctx context.Context, exec Executor, chatId int64) error {
	delete(s.sessions, chatId)
	return nil
}

func (s *stubSessionRepository) DeleteChatSessionsOlderThan(ctx context.Context, exec Executor,
	ttl time.Duration,
) (int64, error) {
	deleted := int64(len(s.sessions))
	s.sessions = make(map[int64]models.ChatSession)
	return deleted, nil
}

func newCachedRepositoryWithTtl(inner ChatSessionRepository, ttl time.Duration) *CachedChatSessionRepository {
	return &CachedChatSessionRepository{
		inner: inner,
		cache: expirable.NewLRU[int64, models.ChatSession](sessionCacheSize, nil, ttl),
		clock: clock.New(),
	}
}

func TestCachedChatSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts are served from cache", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := NewCachedChatSessionRepository(inner)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId:        12,
			UserId:        34,
			Kind:          models.MaterialKindText,
			ExtractedText: "material",
		})
		assert.NoError(t, err)

		session, err := repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		if assert.NotNil(t, session) {
			assert.Equal(t, "material", session.ExtractedText)
		}
		assert.Equal(t, 0, inner.getCalls)
	})

	t.Run("cache miss falls through and backfills", func(t *testing.T) {
		inner := newStubSessionRepository()
		inner.sessions[12] = models.ChatSession{ChatId: 12, ExtractedText: "from db"}
		repo := NewCachedChatSessionRepository(inner)

		for range 2 {
			session, err := repo.GetChatSession(ctx, nil, 12)
			assert.NoError(t, err)
			if assert.NotNil(t, session) {
				assert.Equal(t, "from db", session.ExtractedText)
			}
		}
		assert.Equal(t, 1, inner.getCalls)
	})

	t.Run("delete evicts", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := NewCachedChatSessionRepository(inner)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId: 12, UserId: 34, Kind: models.MaterialKindText, ExtractedText: "material",
		})
		assert.NoError(t, err)
		assert.NoError(t, repo.DeleteChatSession(ctx, nil, 12))

		session, err := repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("bulk cleanup purges the cache", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := NewCachedChatSessionRepository(inner)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId: 12, UserId: 34, Kind: models.MaterialKindText, ExtractedText: "material",
		})
		assert.NoError(t, err)

		deleted, err := repo.DeleteChatSessionsOlderThan(ctx, nil, time.Hour)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		session, err := repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("entries expire and fall through to the database", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := newCachedRepositoryWithTtl(inner, 10*time.Millisecond)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId: 12, UserId: 34, Kind: models.MaterialKindText, ExtractedText: "material",
		})
		assert.NoError(t, err)

		_, err = repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		assert.Equal(t, 0, inner.getCalls)

		time.Sleep(20 * time.Millisecond)

		_, err = repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		assert.Equal(t, 1, inner.getCalls)
	})

	t.Run("a delete done by another process becomes visible after expiry", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := newCachedRepositoryWithTtl(inner, 10*time.Millisecond)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId: 12, UserId: 34, Kind: models.MaterialKindText, ExtractedText: "material",
		})
		assert.NoError(t, err)

		// another process deletes the row without going through this cache
		delete(inner.sessions, 12)

		time.Sleep(20 * time.Millisecond)

		session, err := repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("an overwrite done by another process becomes visible after expiry", func(t *testing.T) {
		inner := newStubSessionRepository()
		repo := newCachedRepositoryWithTtl(inner, 10*time.Millisecond)

		err := repo.UpsertChatSession(ctx, nil, models.UpsertChatSessionInput{
			ChatId: 12, UserId: 34, Kind: models.MaterialKindText, ExtractedText: "material A",
		})
		assert.NoError(t, err)

		inner.sessions[12] = models.ChatSession{ChatId: 12, UserId: 34, ExtractedText: "material B"}

		time.Sleep(20 * time.Millisecond)

		session, err := repo.GetChatSession(ctx, nil, 12)
		assert.NoError(t, err)
		if assert.NotNil(t, session) {
			assert.Equal(t, "material B", session.ExtractedText)
		}
	})
}
