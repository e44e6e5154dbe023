package repositories

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/repositories/clock"
)

const (
	sessionCacheSize = 1024
	// sessionCacheTtl bounds how long a process can serve a session that
	// another process has already replaced or deleted in the database.
	sessionCacheTtl = 30 * time.Second
)

// CachedChatSessionRepository keeps the most recently touched sessions in
// memory. Telegram traffic is extremely read-heavy on the session row: every
// callback query loads it right after the message that wrote it.
// The cache is per process and only sees its own writes, so entries expire
// after sessionCacheTtl and the database stays the source of truth. Processes
// that must always read the current row, like the task queue worker, use the
// plain repository instead (see NewRepositories).
type CachedChatSessionRepository struct {
	inner ChatSessionRepository
	cache *expirable.LRU[int64, models.ChatSession]
	clock clock.Clock
}

func NewCachedChatSessionRepository(inner ChatSessionRepository) *CachedChatSessionRepository {
	return &CachedChatSessionRepository{
		inner: inner,
		cache: expirable.NewLRU[int64, models.ChatSession](sessionCacheSize, nil, sessionCacheTtl),
		clock: clock.New(),
	}
}

func (repo *CachedChatSessionRepository) UpsertChatSession(
	ctx context.Context,
	exec Executor,
	input models.UpsertChatSessionInput,
) error {
	if err := repo.inner.UpsertChatSession(ctx, exec, input); err != nil {
		return err
	}

	now := repo.clock.Now()
	repo.cache.Add(input.ChatId, models.ChatSession{
		ChatId:        input.ChatId,
		UserId:        input.UserId,
		Kind:          input.Kind,
		ExtractedText: input.ExtractedText,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	return nil
}

func (repo *CachedChatSessionRepository) GetChatSession(
	ctx context.Context,
	exec Executor,
	chatId int64,
) (*models.ChatSession, error) {
	if session, ok := repo.cache.Get(chatId); ok {
		return &session, nil
	}

	session, err := repo.inner.GetChatSession(ctx, exec, chatId)
	if err != nil {
		return nil, err
	}
	if session != nil {
		repo.cache.Add(chatId, *session)
	}
	return session, nil
}

func (repo *CachedChatSessionRepository) DeleteChatSession(
	ctx context.Context,
	exec Executor,
	chatId int64,
) error {
	repo.cache.Remove(chatId)
	return repo.inner.DeleteChatSession(ctx, exec, chatId)
}

func (repo *CachedChatSessionRepository) DeleteChatSessionsOlderThan(
	ctx context.Context,
	exec Executor,
	ttl time.Duration,
) (int64, error) {
	// Expired rows may still sit in the cache; purging everything is cheaper
	// than computing which of the 1024 entries just went away.
	repo.cache.Purge()
	return repo.inner.DeleteChatSessionsOlderThan(ctx, exec, ttl)
}
