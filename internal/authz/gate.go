package authz

import (
	"context"
	"errors"
	"log/slog"

	"messaging/infrastructure"
	"messaging/internal/models"
)

// Lookup resolves guarded entities. Channels come back with their stored
// member ids and creator id; profiles need not be expanded.
type Lookup interface {
	Channel(ctx context.Context, id int64) (*models.Channel, error)
	Message(ctx context.Context, id int64) (*models.Message, error)
}

// Gate checks the caller's rights on a channel or message before an operation
// runs. Guards only read. An id that does not resolve is rejected exactly like
// a caller without rights so existence is not disclosed.
type Gate struct {
	log *slog.Logger
}

func NewGate(log *slog.Logger) *Gate {
	return &Gate{log: log}
}

// Member admits any caller to a public channel and only members to a private one.
func (g *Gate) Member(ctx context.Context, lookup Lookup, caller models.Profile, channelID int64) (*models.Channel, error) {
	channel, err := g.channel(ctx, lookup, channelID, infrastructure.MsgNotChannelMember)
	if err != nil {
		return nil, err
	}
	if !channel.HasMember(caller.ID) {
		return nil, infrastructure.Forbidden(infrastructure.MsgNotChannelMember)
	}
	return channel, nil
}

// ChannelCreator admits only the creator of the channel.
func (g *Gate) ChannelCreator(ctx context.Context, lookup Lookup, caller models.Profile, channelID int64) (*models.Channel, error) {
	channel, err := g.channel(ctx, lookup, channelID, infrastructure.MsgNotChannelCreator)
	if err != nil {
		return nil, err
	}
	if channel.Creator.ID != caller.ID {
		return nil, infrastructure.Forbidden(infrastructure.MsgNotChannelCreator)
	}
	return channel, nil
}

// MessageCreator admits only the author of the message.
func (g *Gate) MessageCreator(ctx context.Context, lookup Lookup, caller models.Profile, messageID int64) (*models.Message, error) {
	message, err := lookup.Message(ctx, messageID)
	if errors.Is(err, infrastructure.ErrMessageNotFound) {
		return nil, infrastructure.Forbidden(infrastructure.MsgNotMessageCreator)
	}
	if err != nil {
		g.log.Error("Failed to load message", "message_id", messageID, "error", err)
		return nil, infrastructure.ServerError(infrastructure.MsgCannotGetMessage)
	}
	if message.Creator.ID != caller.ID {
		return nil, infrastructure.Forbidden(infrastructure.MsgNotMessageCreator)
	}
	return message, nil
}

func (g *Gate) channel(ctx context.Context, lookup Lookup, id int64, deniedMsg string) (*models.Channel, error) {
	channel, err := lookup.Channel(ctx, id)
	if errors.Is(err, infrastructure.ErrChannelNotFound) {
		return nil, infrastructure.Forbidden(deniedMsg)
	}
	if err != nil {
		g.log.Error("Failed to load channel", "channel_id", id, "error", err)
		return nil, infrastructure.ServerError(infrastructure.MsgCannotGetChannel)
	}
	return channel, nil
}
