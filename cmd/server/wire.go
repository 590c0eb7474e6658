//go:build wireinject
// +build wireinject

package main

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"

	"messaging/config"
	"messaging/internal/cache"
	"messaging/internal/channel"
	"messaging/internal/events"
	"messaging/internal/meetup"
)

var AppSet = wire.NewSet(channel.Set, meetup.Set, ProvideApp)

func InitializeApp(db *sql.DB, cfg *config.Config, log *slog.Logger, profiles cache.ProfileCache, publisher events.Publisher) *App {
	wire.Build(AppSet)

	return &App{}
}
