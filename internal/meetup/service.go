package meetup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"messaging/infrastructure"
	"messaging/internal/channel"
	"messaging/internal/models"
)

type Service struct {
	repo     Repository
	channels Channels
	timeout  time.Duration
	log      *slog.Logger
}

func NewService(repo Repository, channels Channels, timeout time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		channels: channels,
		timeout:  timeout,
		log:      log,
	}
}

func (s *Service) List(ctx context.Context) ([]*Meetup, error) {
	meetups, err := s.repo.All(ctx)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotGetMeetups)
	}
	return meetups, nil
}

// Create opens the meetup's public channel first, then stores the meetup. If
// the meetup cannot be stored the channel is deleted again.
func (s *Service) Create(ctx context.Context, caller models.Profile, req CreateMeetupRequest) (*Meetup, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	ch, err := s.channels.CreateChannel(ctx, caller, channel.CreateChannelRequest{
		Name:        req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	meetup := &Meetup{
		Title:       req.Title,
		StartsAt:    req.StartsAt.UTC(),
		ChannelID:   ch.ID,
		Location:    req.Location,
		Description: req.Description,
		CreatorID:   caller.ID,
	}
	if err := s.repo.Create(ctx, meetup); err != nil {
		s.log.Error(infrastructure.MsgCannotCreateMeetup, "channel_id", ch.ID, "error", err)
		if _, delErr := s.channels.DeleteChannel(ctx, caller, ch.ID); delErr != nil {
			s.log.Warn("Failed to delete channel of unsaved meetup", "channel_id", ch.ID, "error", delErr)
		}
		return nil, infrastructure.ServerError(infrastructure.MsgCannotCreateMeetup)
	}
	return meetup, nil
}

func (s *Service) Join(ctx context.Context, caller models.Profile, meetupID int64) error {
	err := s.repo.Join(ctx, meetupID, caller.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, infrastructure.ErrAlreadyJoined):
		return infrastructure.Conflict(infrastructure.MsgAlreadyJoined)
	case errors.Is(err, infrastructure.ErrMeetupNotFound):
		return infrastructure.NotFound(infrastructure.MsgMeetupNotFound)
	default:
		return s.serverError(err, infrastructure.MsgCannotJoinMeetup)
	}
}

func (s *Service) Joined(ctx context.Context, caller models.Profile) ([]*Meetup, error) {
	meetups, err := s.repo.Joined(ctx, caller.ID)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotGetJoinedMeetups)
	}
	return meetups, nil
}

func (s *Service) serverError(err error, msg string) error {
	s.log.Error(msg, "error", err)
	return infrastructure.ServerError(msg)
}
