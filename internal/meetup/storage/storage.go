package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"messaging/infrastructure"
	chstorage "messaging/internal/channel/storage"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type MeetupSaver interface {
	SaveMeetup(ctx context.Context, q chstorage.Querier, meetup *Meetup) error
	SaveAttendee(ctx context.Context, q chstorage.Querier, meetupID, userID int64) error
}

type MeetupProvider interface {
	AllMeetups(ctx context.Context, q chstorage.Querier) ([]*Meetup, error)
	JoinedMeetups(ctx context.Context, q chstorage.Querier, userID int64) ([]*Meetup, error)
}

type Store interface {
	MeetupSaver
	MeetupProvider
}

type PostgresStorage struct{}

func NewPostgresStorage() *PostgresStorage {
	return &PostgresStorage{}
}

const meetupColumns = `m.id, m.title, m.starts_at, m.channel_id, m.location, m.description, m.creator_id`

// SaveMeetup inserts meetup and fills in its id.
func (s *PostgresStorage) SaveMeetup(ctx context.Context, q chstorage.Querier, meetup *Meetup) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO meetups (title, starts_at, channel_id, location, description, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		meetup.Title, meetup.StartsAt, meetup.ChannelID, meetup.Location, meetup.Description, meetup.CreatorID,
	).Scan(&meetup.ID)
	if err != nil {
		return fmt.Errorf("failed to insert meetup: %w", err)
	}
	return nil
}

// SaveAttendee maps a repeated join to ErrAlreadyJoined and an unknown meetup
// to ErrMeetupNotFound.
func (s *PostgresStorage) SaveAttendee(ctx context.Context, q chstorage.Querier, meetupID, userID int64) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO meetup_attendees (meetup_id, user_id) VALUES ($1, $2)", meetupID, userID)
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("user %d of meetup %d: %w", userID, meetupID, infrastructure.ErrAlreadyJoined)
		case foreignKeyViolation:
			return fmt.Errorf("meetup %d: %w", meetupID, infrastructure.ErrMeetupNotFound)
		}
	}
	return fmt.Errorf("failed to insert attendee: %w", err)
}

func (s *PostgresStorage) AllMeetups(ctx context.Context, q chstorage.Querier) ([]*Meetup, error) {
	return s.selectMeetups(ctx, q, `SELECT `+meetupColumns+` FROM meetups m ORDER BY m.starts_at, m.id`)
}

func (s *PostgresStorage) JoinedMeetups(ctx context.Context, q chstorage.Querier, userID int64) ([]*Meetup, error) {
	return s.selectMeetups(ctx, q, `
		SELECT `+meetupColumns+`
		FROM meetups m
		JOIN meetup_attendees a ON a.meetup_id = m.id
		WHERE a.user_id = $1
		ORDER BY m.starts_at, m.id`, userID)
}

func (s *PostgresStorage) selectMeetups(ctx context.Context, q chstorage.Querier, query string, args ...any) ([]*Meetup, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select meetups: %w", err)
	}
	defer rows.Close()

	meetups := []*Meetup{}
	for rows.Next() {
		m := &Meetup{}
		if err := rows.Scan(&m.ID, &m.Title, &m.StartsAt, &m.ChannelID, &m.Location, &m.Description, &m.CreatorID); err != nil {
			return nil, fmt.Errorf("failed to scan meetup: %w", err)
		}
		meetups = append(meetups, m)
	}
	return meetups, rows.Err()
}
