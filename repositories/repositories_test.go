package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepositoriesSessionCaching(t *testing.T) {
	t.Run("defaults to the cached repository", func(t *testing.T) {
		repos := NewRepositories(nil)
		assert.IsType(t, &CachedChatSessionRepository{}, repos.ChatSessionRepository)
	})

	t.Run("uncached option wires the plain repository", func(t *testing.T) {
		repos := NewRepositories(nil, WithUncachedSessions())
		assert.IsType(t, ChatSessionRepositoryPostgresql{}, repos.ChatSessionRepository)
	})
}
