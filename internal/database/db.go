package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"messaging/config"
	"messaging/internal/channel/storage"
	mstorage "messaging/internal/meetup/storage"
)

// Open connects to Postgres and checks the connection before returning the pool.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SetMaxIdleConns sets the maximum number of connections in the idle connection pool.
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	// SetMaxOpenConns sets the maximum number of open connections to the database.
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)

	// SetConnMaxLifetime sets the maximum amount of time a connection may be reused.
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	log.Info("Connected to database successfully")
	return db, nil
}

// Migrate creates or extends the tables the channel storage reads and writes.
// The users table belongs to the identity service, so it is created when
// missing and never altered.
func Migrate(db *sql.DB, log *slog.Logger) error {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open migration session: %w", err)
	}

	created, err := createIfMissing(gdb.Migrator(), &storage.Profile{})
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if created {
		log.Info("Created users table")
	}

	err = gdb.AutoMigrate(
		&storage.Channel{}, &storage.ChannelMember{}, &storage.Message{},
		&mstorage.Meetup{}, &mstorage.Attendee{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database migration completed")
	return nil
}

// tableCreator is the part of gorm.Migrator used for tables this service
// does not own.
type tableCreator interface {
	HasTable(dst interface{}) bool
	CreateTable(dst ...interface{}) error
}

func createIfMissing(m tableCreator, model interface{}) (bool, error) {
	if m.HasTable(model) {
		return false, nil
	}
	if err := m.CreateTable(model); err != nil {
		return false, err
	}
	return true, nil
}
