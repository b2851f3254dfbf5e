package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetKnowledgePath() string
	IsTelegramSelected() bool
	IsWebSelected() bool
}

type DialogueConfig interface {
	GetCharDelay() time.Duration
	GetMinDelay() time.Duration
	GetMaxDelay() time.Duration
	GetMaxQueued() int
}

type TelegramConfig interface {
	GetTelegramToken() string
	GetPollTimeout() time.Duration
}

type MailConfig interface {
	GetResendAPIKey() string
	GetMailFrom() string
	GetMailTo() string
}

type WebConfig interface {
	GetWebAddr() string
	GetSessionTTL() time.Duration
	GetMaxSessions() int
}
