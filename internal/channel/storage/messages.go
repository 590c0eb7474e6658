package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"messaging/infrastructure"
)

type MessageSaver interface {
	SaveMessage(ctx context.Context, q Querier, message *Message) error
}

type MessageProvider interface {
	MessageByID(ctx context.Context, q Querier, id int64) (*Message, error)
	ChannelMessages(ctx context.Context, q Querier, channelID, before int64, limit int) ([]*Message, error)
}

type MessageUpdater interface {
	UpdateMessageBody(ctx context.Context, q Querier, id int64, body string) (time.Time, error)
}

type MessageDeleter interface {
	DeleteMessage(ctx context.Context, q Querier, id int64) error
}

const messageColumns = `id, channel_id, body, creator_id, created_at, edited_at`

// SaveMessage inserts message and fills in its id and creation time from the
// database.
func (s *PostgresStorage) SaveMessage(ctx context.Context, q Querier, message *Message) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO messages (channel_id, body, creator_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		message.ChannelID, message.Body, message.CreatorID,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) MessageByID(ctx context.Context, q Querier, id int64) (*Message, error) {
	message := &Message{}
	err := q.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id).Scan(
		&message.ID, &message.ChannelID, &message.Body, &message.CreatorID, &message.CreatedAt, &message.EditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select message: %w", err)
	}
	return message, nil
}

// ChannelMessages returns the latest limit messages of a channel, oldest
// first. A positive before restricts the page to ids strictly below it.
func (s *PostgresStorage) ChannelMessages(ctx context.Context, q Querier, channelID, before int64, limit int) ([]*Message, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if before > 0 {
		rows, err = q.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM (
				SELECT `+messageColumns+` FROM messages
				WHERE channel_id = $1 AND id < $2
				ORDER BY id DESC
				LIMIT $3
			) page
			ORDER BY id`, channelID, before, limit)
	} else {
		rows, err = q.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM (
				SELECT `+messageColumns+` FROM messages
				WHERE channel_id = $1
				ORDER BY id DESC
				LIMIT $2
			) page
			ORDER BY id`, channelID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	messages := []*Message{}
	for rows.Next() {
		message := &Message{}
		if err := rows.Scan(&message.ID, &message.ChannelID, &message.Body,
			&message.CreatorID, &message.CreatedAt, &message.EditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (s *PostgresStorage) UpdateMessageBody(ctx context.Context, q Querier, id int64, body string) (time.Time, error) {
	var editedAt time.Time
	err := q.QueryRowContext(ctx,
		"UPDATE messages SET body = $2, edited_at = NOW() WHERE id = $1 RETURNING edited_at", id, body,
	).Scan(&editedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update message: %w", err)
	}
	return editedAt, nil
}

func (s *PostgresStorage) DeleteMessage(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return expectAffected(res, fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound))
}
