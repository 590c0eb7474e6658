package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"messaging/infrastructure"
)

// uniqueViolation is the SQLSTATE raised on a duplicate key.
const uniqueViolation = "23505"

// Querier is the part of *sql.Conn and *sql.Tx the storage needs. Callers pass
// the connection or transaction bound to the current request.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ChannelSaver interface {
	SaveChannel(ctx context.Context, q Querier, channel *Channel) (int64, error)
	AddMember(ctx context.Context, q Querier, channelID, memberID int64) error
}

type ChannelProvider interface {
	ChannelByID(ctx context.Context, q Querier, id int64) (*Channel, error)
	VisibleChannels(ctx context.Context, q Querier, userID int64) ([]*Channel, error)
	MemberIDs(ctx context.Context, q Querier, channelID int64) ([]int64, error)
	MembersByChannel(ctx context.Context, q Querier, channelIDs []int64) (map[int64][]int64, error)
}

type ChannelUpdater interface {
	UpdateChannel(ctx context.Context, q Querier, id int64, name, description *string, editedAt time.Time) error
}

type ChannelDeleter interface {
	DeleteChannel(ctx context.Context, q Querier, id int64) error
	DeleteChannelMessages(ctx context.Context, q Querier, channelID int64) (int64, error)
	DeleteChannelMembers(ctx context.Context, q Querier, channelID int64) (int64, error)
	RemoveMember(ctx context.Context, q Querier, channelID, memberID int64) (bool, error)
}

// Store is everything PostgresStorage provides.
type Store interface {
	ChannelSaver
	ChannelProvider
	ChannelUpdater
	ChannelDeleter
	MessageSaver
	MessageProvider
	MessageUpdater
	MessageDeleter
	ProfileProvider
}

type PostgresStorage struct{}

func NewPostgresStorage() *PostgresStorage {
	return &PostgresStorage{}
}

const channelColumns = `c.id, c.name, c.description, c.private, c.creator_id, c.created_at, c.edited_at`

func (s *PostgresStorage) SaveChannel(ctx context.Context, q Querier, channel *Channel) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO channels (name, description, private, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		channel.Name, channel.Description, channel.Private, channel.CreatorID, channel.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert channel: %w", err)
	}
	return id, nil
}

func (s *PostgresStorage) AddMember(ctx context.Context, q Querier, channelID, memberID int64) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO channel_members (channel_id, member_id) VALUES ($1, $2)", channelID, memberID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("member %d of channel %d: %w", memberID, channelID, infrastructure.ErrMemberExists)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ChannelByID(ctx context.Context, q Querier, id int64) (*Channel, error) {
	channel := &Channel{}
	err := q.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels c WHERE c.id = $1`, id).Scan(
		&channel.ID, &channel.Name, &channel.Description, &channel.Private,
		&channel.CreatorID, &channel.CreatedAt, &channel.EditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %d: %w", id, infrastructure.ErrChannelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select channel: %w", err)
	}
	return channel, nil
}

// VisibleChannels returns every public channel and every private channel
// userID is a member of.
func (s *PostgresStorage) VisibleChannels(ctx context.Context, q Querier, userID int64) ([]*Channel, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+channelColumns+`
		FROM channels c
		WHERE c.private = FALSE
		   OR EXISTS (SELECT 1 FROM channel_members m WHERE m.channel_id = c.id AND m.member_id = $1)
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		channel := &Channel{}
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.Description, &channel.Private,
			&channel.CreatorID, &channel.CreatedAt, &channel.EditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func (s *PostgresStorage) MemberIDs(ctx context.Context, q Querier, channelID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT member_id FROM channel_members WHERE channel_id = $1 ORDER BY member_id", channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to select members: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStorage) MembersByChannel(ctx context.Context, q Querier, channelIDs []int64) (map[int64][]int64, error) {
	members := make(map[int64][]int64, len(channelIDs))
	if len(channelIDs) == 0 {
		return members, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT channel_id, member_id FROM channel_members
		WHERE channel_id = ANY($1)
		ORDER BY channel_id, member_id`, pq.Array(channelIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to select members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channelID, memberID int64
		if err := rows.Scan(&channelID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[channelID] = append(members[channelID], memberID)
	}
	return members, rows.Err()
}

// UpdateChannel sets the non-nil fields and stamps edited_at.
func (s *PostgresStorage) UpdateChannel(ctx context.Context, q Querier, id int64, name, description *string, editedAt time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE channels SET
		name = COALESCE($2, name),
		description = COALESCE($3, description),
		edited_at = $4
		WHERE id = $1`,
		id, nullString(name), nullString(description), editedAt)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return expectAffected(res, fmt.Errorf("channel %d: %w", id, infrastructure.ErrChannelNotFound))
}

func (s *PostgresStorage) DeleteChannel(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM channels WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteChannelMessages(ctx context.Context, q Querier, channelID int64) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM messages WHERE channel_id = $1", channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete channel messages: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStorage) DeleteChannelMembers(ctx context.Context, q Querier, channelID int64) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM channel_members WHERE channel_id = $1", channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete channel members: %w", err)
	}
	return res.RowsAffected()
}

// RemoveMember reports whether a membership row was actually deleted.
func (s *PostgresStorage) RemoveMember(ctx context.Context, q Querier, channelID, memberID int64) (bool, error) {
	res, err := q.ExecContext(ctx,
		"DELETE FROM channel_members WHERE channel_id = $1 AND member_id = $2", channelID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
