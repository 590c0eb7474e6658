package meetup

import (
	"context"
	"database/sql"

	"messaging/internal/meetup/storage"
)

type Repository interface {
	Create(ctx context.Context, meetup *Meetup) error
	All(ctx context.Context) ([]*Meetup, error)
	Join(ctx context.Context, meetupID, userID int64) error
	Joined(ctx context.Context, userID int64) ([]*Meetup, error)
}

type repository struct {
	*sql.DB
	store storage.Store
}

func NewRepository(db *sql.DB, store storage.Store) Repository {
	return &repository{
		DB:    db,
		store: store,
	}
}

// Create stores meetup and fills in its id.
func (r *repository) Create(ctx context.Context, meetup *Meetup) error {
	row := ConvertMeetupToDBMeetup(meetup)
	if err := r.store.SaveMeetup(ctx, r.DB, row); err != nil {
		return err
	}
	meetup.ID = row.ID
	return nil
}

func (r *repository) All(ctx context.Context) ([]*Meetup, error) {
	rows, err := r.store.AllMeetups(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	return ConvertDBMeetupsToMeetups(rows), nil
}

func (r *repository) Join(ctx context.Context, meetupID, userID int64) error {
	return r.store.SaveAttendee(ctx, r.DB, meetupID, userID)
}

func (r *repository) Joined(ctx context.Context, userID int64) ([]*Meetup, error) {
	rows, err := r.store.JoinedMeetups(ctx, r.DB, userID)
	if err != nil {
		return nil, err
	}
	return ConvertDBMeetupsToMeetups(rows), nil
}
