//go:generate go run go.uber.org/mock/mockgen -source=event.go -destination=mocks/mock_publisher.go -package=mocks
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"messaging/internal/models"
)

type Type string

const (
	ChannelNew    Type = "channel-new"
	ChannelUpdate Type = "channel-update"
	ChannelDelete Type = "channel-delete"
	MessageNew    Type = "message-new"
	MessageUpdate Type = "message-update"
	MessageDelete Type = "message-delete"
)

// Event is the envelope put on the events queue. UserIDs lists the users to
// notify; an empty list addresses every connected user.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	Channel    *models.Channel `json:"channel,omitempty"`
	ChannelID  int64           `json:"channelID,omitempty"`
	Message    *models.Message `json:"message,omitempty"`
	MessageID  int64           `json:"messageID,omitempty"`
	UserIDs    []int64         `json:"userIDs"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Publisher hands events to the delivery gateway.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(t Type, recipients []int64) Event {
	if recipients == nil {
		recipients = []int64{}
	}
	return Event{
		ID:         uuid.New(),
		Type:       t,
		UserIDs:    recipients,
		OccurredAt: time.Now().UTC(),
	}
}

// ChannelChanged builds a channel-new or channel-update event addressed to the
// channel's recipients.
func ChannelChanged(t Type, channel *models.Channel) Event {
	e := newEvent(t, channel.Recipients())
	e.Channel = channel
	e.ChannelID = channel.ID
	return e
}

// ChannelDeleted carries only the id; recipients are the members before deletion.
func ChannelDeleted(channel *models.Channel) Event {
	e := newEvent(ChannelDelete, channel.Recipients())
	e.ChannelID = channel.ID
	return e
}

func MessageChanged(t Type, message *models.Message, recipients []int64) Event {
	e := newEvent(t, recipients)
	e.Message = message
	e.MessageID = message.ID
	e.ChannelID = message.ChannelID
	return e
}

func MessageDeleted(messageID, channelID int64, recipients []int64) Event {
	e := newEvent(MessageDelete, recipients)
	e.MessageID = messageID
	e.ChannelID = channelID
	return e
}
