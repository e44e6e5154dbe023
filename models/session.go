package models

import "time"

// ChatSession holds the material a chat sent and that is waiting for the user
// to pick a study mode. One session per chat: new material overwrites the
// previous one, mirroring how the user would expect "send, then choose" to
// behave.
type ChatSession struct {
	ChatId        int64
	UserId        int64
	Kind          MaterialKind
	ExtractedText string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UpsertChatSessionInput struct {
	ChatId        int64
	UserId        int64
	Kind          MaterialKind
	ExtractedText string
}
