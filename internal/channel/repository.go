package channel

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"messaging/infrastructure"
	"messaging/internal/authz"
	"messaging/internal/cache"
	"messaging/internal/channel/storage"
	"messaging/internal/models"
)

// Session is the store as seen by a single request. Every call goes through the
// same connection, so what a guard reads is what the operation mutates.
type Session interface {
	authz.Lookup

	VisibleChannels(ctx context.Context, userID int64) ([]*models.Channel, error)
	CreateChannel(ctx context.Context, channel *models.Channel) error
	UpdateChannel(ctx context.Context, id int64, name, description *string, editedAt time.Time) error
	DeleteChannel(ctx context.Context, id int64) error
	AddMember(ctx context.Context, channelID, memberID int64) error
	RemoveMember(ctx context.Context, channelID, memberID int64) (bool, error)

	Messages(ctx context.Context, channelID, before int64, limit int) ([]*models.Message, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	UpdateMessage(ctx context.Context, id int64, body string) (time.Time, error)
	DeleteMessage(ctx context.Context, id int64) error

	// Profiles returns the known profiles among ids.
	Profiles(ctx context.Context, ids []int64) (map[int64]models.Profile, error)

	Close() error
}

type Repository interface {
	Session(ctx context.Context) (Session, error)
}

type repository struct {
	*sql.DB
	store    storage.Store
	profiles cache.ProfileCache
	log      *slog.Logger
}

func NewRepository(db *sql.DB, store storage.Store, profiles cache.ProfileCache, log *slog.Logger) Repository {
	return &repository{
		DB:       db,
		store:    store,
		profiles: profiles,
		log:      log,
	}
}

// Session reserves a pooled connection until the returned session is closed.
func (r *repository) Session(ctx context.Context) (Session, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &session{conn: conn, store: r.store, profiles: r.profiles, log: r.log}, nil
}

type session struct {
	conn     *sql.Conn
	store    storage.Store
	profiles cache.ProfileCache
	log      *slog.Logger
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) Channel(ctx context.Context, id int64) (*models.Channel, error) {
	row, err := s.store.ChannelByID(ctx, s.conn, id)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.store.MemberIDs(ctx, s.conn, id)
	if err != nil {
		return nil, err
	}
	return ConvertDBChannelToChannel(row, memberIDs), nil
}

func (s *session) Message(ctx context.Context, id int64) (*models.Message, error) {
	row, err := s.store.MessageByID(ctx, s.conn, id)
	if err != nil {
		return nil, err
	}
	return ConvertDBMessageToMessage(row), nil
}

func (s *session) VisibleChannels(ctx context.Context, userID int64) (channels []*models.Channel, err error) {
	err = infrastructure.TimeOperation(ctx, s.log, "VisibleChannels", func() error {
		rows, err := s.store.VisibleChannels(ctx, s.conn, userID)
		if err != nil {
			return err
		}
		members, err := s.store.MembersByChannel(ctx, s.conn, lo.FilterMap(rows, func(row *storage.Channel, _ int) (int64, bool) {
			return row.ID, row.Private
		}))
		if err != nil {
			return err
		}
		channels = lo.Map(rows, func(row *storage.Channel, _ int) *models.Channel {
			return ConvertDBChannelToChannel(row, members[row.ID])
		})
		return nil
	})
	return channels, err
}

// CreateChannel inserts the channel and its member rows in one transaction.
// The creator is always the first member. ID and MemberIDs are filled in.
func (s *session) CreateChannel(ctx context.Context, channel *models.Channel) error {
	memberIDs := lo.Uniq(append([]int64{channel.Creator.ID}, channel.MemberIDs...))
	return infrastructure.WithTransaction(ctx, s.conn, func(tx *sql.Tx) error {
		id, err := s.store.SaveChannel(ctx, tx, ConvertChannelToDBChannel(channel))
		if err != nil {
			return err
		}
		for _, memberID := range memberIDs {
			if err := s.store.AddMember(ctx, tx, id, memberID); err != nil {
				return err
			}
		}
		channel.ID = id
		channel.MemberIDs = memberIDs
		return nil
	})
}

func (s *session) UpdateChannel(ctx context.Context, id int64, name, description *string, editedAt time.Time) error {
	return s.store.UpdateChannel(ctx, s.conn, id, name, description, editedAt)
}

// DeleteChannel removes the channel's messages, then its members, then the
// channel itself. Empty steps are fine.
func (s *session) DeleteChannel(ctx context.Context, id int64) error {
	return infrastructure.WithTransaction(ctx, s.conn, func(tx *sql.Tx) error {
		messages, err := s.store.DeleteChannelMessages(ctx, tx, id)
		if err != nil {
			return err
		}
		members, err := s.store.DeleteChannelMembers(ctx, tx, id)
		if err != nil {
			return err
		}
		s.log.Debug("Deleting channel", "channel_id", id, "messages", messages, "members", members)
		return s.store.DeleteChannel(ctx, tx, id)
	})
}

func (s *session) AddMember(ctx context.Context, channelID, memberID int64) error {
	return s.store.AddMember(ctx, s.conn, channelID, memberID)
}

func (s *session) RemoveMember(ctx context.Context, channelID, memberID int64) (bool, error) {
	return s.store.RemoveMember(ctx, s.conn, channelID, memberID)
}

func (s *session) Messages(ctx context.Context, channelID, before int64, limit int) ([]*models.Message, error) {
	rows, err := s.store.ChannelMessages(ctx, s.conn, channelID, before, limit)
	if err != nil {
		return nil, err
	}
	return ConvertDBMessagesToMessages(rows), nil
}

func (s *session) CreateMessage(ctx context.Context, message *models.Message) error {
	row := &storage.Message{
		ChannelID: message.ChannelID,
		Body:      message.Body,
		CreatorID: message.Creator.ID,
	}
	if err := s.store.SaveMessage(ctx, s.conn, row); err != nil {
		return err
	}
	message.ID = row.ID
	message.CreatedAt = row.CreatedAt
	message.EditedAt = nil
	return nil
}

func (s *session) UpdateMessage(ctx context.Context, id int64, body string) (time.Time, error) {
	return s.store.UpdateMessageBody(ctx, s.conn, id, body)
}

func (s *session) DeleteMessage(ctx context.Context, id int64) error {
	return s.store.DeleteMessage(ctx, s.conn, id)
}

// Profiles reads through the profile cache. A cache failure degrades to the
// database rather than failing the request.
func (s *session) Profiles(ctx context.Context, ids []int64) (map[int64]models.Profile, error) {
	ids = lo.Uniq(ids)
	found, missing, err := s.profiles.Profiles(ctx, ids)
	if err != nil {
		s.log.Warn("Profile cache unavailable", "error", err)
		found, missing = map[int64]models.Profile{}, ids
	}
	if len(missing) == 0 {
		return found, nil
	}

	rows, err := s.store.ProfilesByIDs(ctx, s.conn, missing)
	if err != nil {
		return nil, err
	}
	loaded := ConvertDBProfilesToProfiles(rows)
	for _, p := range loaded {
		found[p.ID] = p
	}
	if err := s.profiles.Store(ctx, loaded); err != nil {
		s.log.Warn("Failed to cache profiles", "error", err)
	}
	return found, nil
}
