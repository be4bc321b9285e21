package server

import (
	"github.com/lestrrat-go/jwx/v2/jwk"
	"leaflog/internal/client"
	"leaflog/internal/database"
)

type Server struct {
	DB                database.Database
	Client            client.Client
	AI                client.AI
	Feed              *ChangeFeed
	Logger            logger
	AuthSecretKey     jwk.Key
	MaxEventsPerPlant int
	ReminderAfterDays int
}

type logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}
