package channel

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"

	"messaging/config"
	"messaging/internal/authz"
	"messaging/internal/cache"
	"messaging/internal/channel/storage"
	"messaging/internal/events"
	"messaging/internal/identity"
)

func ProvideJsonHandler(service *Service, reader *identity.Reader) *JSONHandler {
	return NewJSONHandler(service, reader)
}

func ProvideService(repo Repository, gate *authz.Gate, publisher events.Publisher, cfg *config.Config, log *slog.Logger) *Service {
	return NewService(repo, gate, publisher, cfg.RequestTimeout, log)
}

func ProvideRepository(
	db *sql.DB,
	storage *storage.PostgresStorage,
	profiles cache.ProfileCache,
	log *slog.Logger,
) Repository {
	return NewRepository(db, storage, profiles, log)
}

// ProvideChannelStorage is a Wire provider function that creates a storage.PostgresStorage
func ProvideChannelStorage() *storage.PostgresStorage {
	return storage.NewPostgresStorage()
}

func ProvideGate(log *slog.Logger) *authz.Gate {
	return authz.NewGate(log)
}

func ProvideIdentityReader(cfg *config.Config, log *slog.Logger) *identity.Reader {
	return identity.NewReader(cfg.IdentityHeader, log)
}

var Set = wire.NewSet(ProvideChannelStorage, ProvideRepository, ProvideGate, ProvideIdentityReader, ProvideService, ProvideJsonHandler)
