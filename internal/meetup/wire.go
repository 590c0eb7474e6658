package meetup

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"

	"messaging/config"
	"messaging/internal/channel"
	"messaging/internal/identity"
	"messaging/internal/meetup/storage"
)

func ProvideJsonHandler(service *Service, reader *identity.Reader) *JSONHandler {
	return NewJSONHandler(service, reader)
}

func ProvideService(repo Repository, channels Channels, cfg *config.Config, log *slog.Logger) *Service {
	return NewService(repo, channels, cfg.RequestTimeout, log)
}

func ProvideRepository(db *sql.DB, storage *storage.PostgresStorage) Repository {
	return NewRepository(db, storage)
}

// ProvideMeetupStorage is a Wire provider function that creates a storage.PostgresStorage
func ProvideMeetupStorage() *storage.PostgresStorage {
	return storage.NewPostgresStorage()
}

var Set = wire.NewSet(
	ProvideMeetupStorage,
	ProvideRepository,
	ProvideService,
	ProvideJsonHandler,
	wire.Bind(new(Channels), new(*channel.Service)),
)
