package channel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"messaging/infrastructure"
	"messaging/internal/authz"
	"messaging/internal/events"
	"messaging/internal/models"
)

// PageSize is the maximum number of messages returned by one page.
const PageSize = 100

// Service runs the channel and message operations. Each call resolves the
// caller's rights through the gate and applies the mutation on one store
// session, then publishes the matching event once the session is released.
type Service struct {
	repo      Repository
	gate      *authz.Gate
	publisher events.Publisher
	timeout   time.Duration
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, gate *authz.Gate, publisher events.Publisher, timeout time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		timeout:   timeout,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withSession(ctx context.Context, fn func(ctx context.Context, sess Session) error) error {
	return s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		return nil, fn(ctx, sess)
	})
}

// mutate runs fn on a session detached from the caller's cancellation, so a
// client that disconnects does not abort a mutation halfway. The event fn
// returns is published after the connection went back to the pool.
func (s *Service) mutate(ctx context.Context, fn func(ctx context.Context, sess Session) (*events.Event, error)) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	event, err := s.inSession(ctx, fn)
	if err != nil || event == nil {
		return err
	}
	return s.publish(ctx, *event)
}

func (s *Service) inSession(ctx context.Context, fn func(ctx context.Context, sess Session) (*events.Event, error)) (*events.Event, error) {
	sess, err := s.repo.Session(ctx)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotConnect)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.log.Warn("Failed to release connection", "error", err)
		}
	}()
	return fn(ctx, sess)
}

func (s *Service) ListChannels(ctx context.Context, caller models.Profile) (channels []*models.Channel, err error) {
	err = s.withSession(ctx, func(ctx context.Context, sess Session) error {
		channels, err = sess.VisibleChannels(ctx, caller.ID)
		if err != nil {
			return s.serverError(err, infrastructure.MsgCannotGetChannels)
		}
		return s.expandChannels(ctx, sess, caller, channels...)
	})
	if channels == nil {
		channels = []*models.Channel{}
	}
	return channels, err
}

func (s *Service) CreateChannel(ctx context.Context, caller models.Profile, req CreateChannelRequest) (channel *models.Channel, err error) {
	channel = &models.Channel{
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
		CreatedAt:   s.now(),
		Creator:     caller,
		MemberIDs: lo.Map(req.Members, func(p models.Profile, _ int) int64 {
			return p.ID
		}),
	}
	err = s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if err := sess.CreateChannel(ctx, channel); err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotCreateChannel)
		}
		if err := s.expandChannels(ctx, sess, caller, channel); err != nil {
			return nil, err
		}
		return lo.ToPtr(events.ChannelChanged(events.ChannelNew, channel)), nil
	})
	return channel, err
}

func (s *Service) UpdateChannel(ctx context.Context, caller models.Profile, channelID int64, req UpdateChannelRequest) (channel *models.Channel, err error) {
	if req.Name == nil && req.Description == nil {
		return nil, infrastructure.InvalidArgument(infrastructure.MsgEmptyChannelUpdate)
	}
	err = s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if _, err := s.gate.ChannelCreator(ctx, sess, caller, channelID); err != nil {
			return nil, err
		}
		if err := sess.UpdateChannel(ctx, channelID, req.Name, req.Description, s.now()); err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotUpdateChannel)
		}
		if channel, err = s.reloadChannel(ctx, sess, caller, channelID); err != nil {
			return nil, err
		}
		return lo.ToPtr(events.ChannelChanged(events.ChannelUpdate, channel)), nil
	})
	return channel, err
}

// DeleteChannel returns the channel as it was before deletion.
func (s *Service) DeleteChannel(ctx context.Context, caller models.Profile, channelID int64) (channel *models.Channel, err error) {
	err = s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if channel, err = s.gate.ChannelCreator(ctx, sess, caller, channelID); err != nil {
			return nil, err
		}
		if err := sess.DeleteChannel(ctx, channelID); err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotDeleteChannel)
		}
		return lo.ToPtr(events.ChannelDeleted(channel)), nil
	})
	return channel, err
}

// AddMember rejects a user who already is a member with Conflict.
func (s *Service) AddMember(ctx context.Context, caller models.Profile, channelID, memberID int64) error {
	return s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if _, err := s.gate.ChannelCreator(ctx, sess, caller, channelID); err != nil {
			return nil, err
		}
		if err := sess.AddMember(ctx, channelID, memberID); err != nil {
			if errors.Is(err, infrastructure.ErrMemberExists) {
				return nil, infrastructure.Conflict(infrastructure.MsgMemberExists)
			}
			return nil, s.serverError(err, infrastructure.MsgCannotAddMember)
		}
		channel, err := s.reloadChannel(ctx, sess, caller, channelID)
		if err != nil {
			return nil, err
		}
		return lo.ToPtr(events.ChannelChanged(events.ChannelUpdate, channel)), nil
	})
}

// RemoveMember succeeds without an event when the user was not a member. The
// removed user is notified along with the remaining members.
func (s *Service) RemoveMember(ctx context.Context, caller models.Profile, channelID, memberID int64) error {
	return s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if _, err := s.gate.ChannelCreator(ctx, sess, caller, channelID); err != nil {
			return nil, err
		}
		removed, err := sess.RemoveMember(ctx, channelID, memberID)
		if err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotRemoveMember)
		}
		if !removed {
			return nil, nil
		}
		channel, err := s.reloadChannel(ctx, sess, caller, channelID)
		if err != nil {
			return nil, err
		}
		event := events.ChannelChanged(events.ChannelUpdate, channel)
		if channel.Private {
			event.UserIDs = lo.Uniq(append(event.UserIDs, memberID))
		}
		return &event, nil
	})
}

// Messages returns the latest page of at most PageSize messages, oldest first.
// A positive before returns the page of messages older than that id, so the
// first message of a page is the cursor for the next one.
func (s *Service) Messages(ctx context.Context, caller models.Profile, channelID, before int64) (messages []*models.Message, err error) {
	err = s.withSession(ctx, func(ctx context.Context, sess Session) error {
		if _, err := s.gate.Member(ctx, sess, caller, channelID); err != nil {
			return err
		}
		if messages, err = sess.Messages(ctx, channelID, before, PageSize); err != nil {
			return s.serverError(err, infrastructure.MsgCannotGetMessages)
		}
		return s.expandMessages(ctx, sess, caller, messages...)
	})
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, err
}

func (s *Service) PostMessage(ctx context.Context, caller models.Profile, channelID int64, req PostMessageRequest) (message *models.Message, err error) {
	err = s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		channel, err := s.gate.Member(ctx, sess, caller, channelID)
		if err != nil {
			return nil, err
		}
		message = &models.Message{
			ChannelID: channel.ID,
			Body:      req.Body,
			Creator:   caller,
		}
		if err := sess.CreateMessage(ctx, message); err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotCreateMessage)
		}
		if err := s.expandMessages(ctx, sess, caller, message); err != nil {
			return nil, err
		}
		return lo.ToPtr(events.MessageChanged(events.MessageNew, message, channel.Recipients())), nil
	})
	return message, err
}

func (s *Service) UpdateMessage(ctx context.Context, caller models.Profile, messageID int64, req UpdateMessageRequest) (message *models.Message, err error) {
	err = s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		if message, err = s.gate.MessageCreator(ctx, sess, caller, messageID); err != nil {
			return nil, err
		}
		channel, err := s.messageChannel(ctx, sess, message)
		if err != nil {
			return nil, err
		}
		editedAt, err := sess.UpdateMessage(ctx, messageID, req.Body)
		if err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotUpdateMessage)
		}
		message.Body = req.Body
		message.EditedAt = &editedAt
		if err := s.expandMessages(ctx, sess, caller, message); err != nil {
			return nil, err
		}
		return lo.ToPtr(events.MessageChanged(events.MessageUpdate, message, channel.Recipients())), nil
	})
	return message, err
}

// DeleteMessage notifies the members of the channel the message belonged to.
func (s *Service) DeleteMessage(ctx context.Context, caller models.Profile, messageID int64) error {
	return s.mutate(ctx, func(ctx context.Context, sess Session) (*events.Event, error) {
		message, err := s.gate.MessageCreator(ctx, sess, caller, messageID)
		if err != nil {
			return nil, err
		}
		channel, err := s.messageChannel(ctx, sess, message)
		if err != nil {
			return nil, err
		}
		if err := sess.DeleteMessage(ctx, messageID); err != nil {
			return nil, s.serverError(err, infrastructure.MsgCannotDeleteMessage)
		}
		return lo.ToPtr(events.MessageDeleted(message.ID, message.ChannelID, channel.Recipients())), nil
	})
}

func (s *Service) messageChannel(ctx context.Context, sess Session, message *models.Message) (*models.Channel, error) {
	channel, err := sess.Channel(ctx, message.ChannelID)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotGetChannel)
	}
	return channel, nil
}

func (s *Service) reloadChannel(ctx context.Context, sess Session, caller models.Profile, channelID int64) (*models.Channel, error) {
	channel, err := sess.Channel(ctx, channelID)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotGetChannel)
	}
	if err := s.expandChannels(ctx, sess, caller, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// expandChannels replaces creator ids with profiles and, for private channels,
// fills in the member profiles.
func (s *Service) expandChannels(ctx context.Context, sess Session, caller models.Profile, channels ...*models.Channel) error {
	ids := make([]int64, 0, len(channels))
	for _, c := range channels {
		ids = append(ids, c.Creator.ID)
		if c.Private {
			ids = append(ids, c.MemberIDs...)
		}
	}
	profiles, err := s.profiles(ctx, sess, caller, ids)
	if err != nil {
		return err
	}
	for _, c := range channels {
		c.Creator = profiles(c.Creator.ID)
		if c.Private {
			c.Members = lo.Map(c.MemberIDs, func(id int64, _ int) models.Profile { return profiles(id) })
		}
	}
	return nil
}

func (s *Service) expandMessages(ctx context.Context, sess Session, caller models.Profile, messages ...*models.Message) error {
	profiles, err := s.profiles(ctx, sess, caller, lo.Map(messages, func(m *models.Message, _ int) int64 {
		return m.Creator.ID
	}))
	if err != nil {
		return err
	}
	for _, m := range messages {
		m.Creator = profiles(m.Creator.ID)
	}
	return nil
}

// profiles loads ids and returns a lookup. Users without a stored profile
// resolve to the caller's claim when it is them, or to a bare id.
func (s *Service) profiles(ctx context.Context, sess Session, caller models.Profile, ids []int64) (func(int64) models.Profile, error) {
	if len(ids) == 0 {
		return func(id int64) models.Profile { return models.Profile{ID: id} }, nil
	}
	found, err := sess.Profiles(ctx, ids)
	if err != nil {
		return nil, s.serverError(err, infrastructure.MsgCannotGetProfiles)
	}
	return func(id int64) models.Profile {
		if p, ok := found[id]; ok {
			return p
		}
		if id == caller.ID {
			return caller
		}
		return models.Profile{ID: id}
	}, nil
}

// publish reports a failure as a server error. The mutation has already been
// committed at that point.
func (s *Service) publish(ctx context.Context, event events.Event) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("Failed to publish event", "type", event.Type, "id", event.ID, "error", err)
		return infrastructure.ServerError(infrastructure.MsgCannotPublishEvent)
	}
	return nil
}

func (s *Service) serverError(err error, msg string) error {
	s.log.Error(msg, "error", err)
	return infrastructure.ServerError(msg)
}
