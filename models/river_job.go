package models

import "time"

// GenerateArtifactArgs runs one LLM generation for a chat that picked a mode.
// ProgressMessageId is the "Generating…" message the worker edits or replaces
// with the result.
type GenerateArtifactArgs struct {
	ChatId            int64     `json:"chat_id"`
	UserId            int64     `json:"user_id"`
	ProgressMessageId int       `json:"progress_message_id"`
	Mode              StudyMode `json:"mode"`
}

func (GenerateArtifactArgs) Kind() string { return "generate_artifact" }

// SessionCleanupArgs deletes chat sessions older than Ttl. Enqueued
// periodically by the worker.
type SessionCleanupArgs struct {
	Ttl time.Duration `json:"ttl"`
}

func (SessionCleanupArgs) Kind() string { return "session_cleanup" }
