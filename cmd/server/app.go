package main

import (
	"log/slog"

	"github.com/mama165/sdk-go/logs"

	"messaging/config"
	"messaging/internal/channel"
	"messaging/internal/meetup"
)

// App holds the HTTP handlers built by InitializeApp.
type App struct {
	ChannelHandler *channel.JSONHandler
	MeetupHandler  *meetup.JSONHandler
}

func ProvideApp(channelHandler *channel.JSONHandler, meetupHandler *meetup.JSONHandler) *App {
	return &App{
		ChannelHandler: channelHandler,
		MeetupHandler:  meetupHandler,
	}
}

type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, &configError{err: err}
	}
	return cfg, logs.GetLoggerFromString(cfg.LogLevel), nil
}
