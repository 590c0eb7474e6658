package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"messaging/infrastructure"
	"messaging/internal/models"
)

type fakeLookup struct {
	channels map[int64]*models.Channel
	messages map[int64]*models.Message
	err      error
	calls    int
}

func (f *fakeLookup) Channel(_ context.Context, id int64) (*models.Channel, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.channels[id]
	if !ok {
		return nil, fmt.Errorf("channel %d: %w", id, infrastructure.ErrChannelNotFound)
	}
	return c, nil
}

func (f *fakeLookup) Message(_ context.Context, id int64) (*models.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound)
	}
	return m, nil
}

func newLookup() *fakeLookup {
	return &fakeLookup{
		channels: map[int64]*models.Channel{
			1: {ID: 1, Name: "general", Creator: models.Profile{ID: 10}, MemberIDs: []int64{10}},
			2: {ID: 2, Name: "team", Private: true, Creator: models.Profile{ID: 10}, MemberIDs: []int64{10, 11}},
		},
		messages: map[int64]*models.Message{
			100: {ID: 100, ChannelID: 1, Body: "hi", Creator: models.Profile{ID: 11}},
		},
	}
}

func caller(id int64) models.Profile {
	return models.Profile{ID: id}
}

func TestGate_Member(t *testing.T) {
	gate := NewGate(logs.GetLoggerFromLevel(slog.LevelError))
	ctx := context.Background()

	t.Run("should admit every caller to a public channel", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()
		for _, id := range []int64{10, 11, 12, 999} {
			channel, err := gate.Member(ctx, lookup, caller(id), 1)
			req.NoError(err)
			req.Equal(int64(1), channel.ID)
		}
	})

	t.Run("should admit exactly the members of a private channel", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()
		for id, member := range map[int64]bool{10: true, 11: true, 12: false, 999: false} {
			_, err := gate.Member(ctx, lookup, caller(id), 2)
			if member {
				req.NoError(err, "user %d", id)
			} else {
				req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err), "user %d", id)
				req.Equal(infrastructure.MsgNotChannelMember, infrastructure.ClientMessage(err))
			}
		}
	})

	t.Run("should reject an unknown channel as forbidden", func(t *testing.T) {
		req := require.New(t)

		_, err := gate.Member(ctx, newLookup(), caller(10), 42)

		req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err))
	})

	t.Run("should report a store failure as a server error", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()
		lookup.err = errors.New("connection refused")

		_, err := gate.Member(ctx, lookup, caller(10), 1)

		req.Equal(http.StatusInternalServerError, infrastructure.HTTPStatus(err))
		req.Equal(infrastructure.MsgCannotGetChannel, infrastructure.ClientMessage(err))
	})
}

func TestGate_ChannelCreator(t *testing.T) {
	gate := NewGate(logs.GetLoggerFromLevel(slog.LevelError))
	ctx := context.Background()

	t.Run("should admit only the creator", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()
		for _, channelID := range []int64{1, 2} {
			channel, err := gate.ChannelCreator(ctx, lookup, caller(10), channelID)
			req.NoError(err)
			req.Equal(channelID, channel.ID)

			_, err = gate.ChannelCreator(ctx, lookup, caller(11), channelID)
			req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err))
			req.Equal(infrastructure.MsgNotChannelCreator, infrastructure.ClientMessage(err))
		}
	})

	t.Run("should reject an unknown channel as forbidden", func(t *testing.T) {
		req := require.New(t)

		_, err := gate.ChannelCreator(ctx, newLookup(), caller(10), 42)

		req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err))
	})
}

func TestGate_MessageCreator(t *testing.T) {
	gate := NewGate(logs.GetLoggerFromLevel(slog.LevelError))
	ctx := context.Background()

	t.Run("should admit only the author", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()

		message, err := gate.MessageCreator(ctx, lookup, caller(11), 100)
		req.NoError(err)
		req.Equal("hi", message.Body)

		// The channel creator has no rights over other people's messages.
		_, err = gate.MessageCreator(ctx, lookup, caller(10), 100)
		req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err))
		req.Equal(infrastructure.MsgNotMessageCreator, infrastructure.ClientMessage(err))
	})

	t.Run("should reject an unknown message as forbidden", func(t *testing.T) {
		req := require.New(t)

		_, err := gate.MessageCreator(ctx, newLookup(), caller(11), 7)

		req.Equal(http.StatusForbidden, infrastructure.HTTPStatus(err))
	})

	t.Run("should report a store failure as a server error", func(t *testing.T) {
		req := require.New(t)
		lookup := newLookup()
		lookup.err = errors.New("timeout")

		_, err := gate.MessageCreator(ctx, lookup, caller(11), 100)

		req.Equal(http.StatusInternalServerError, infrastructure.HTTPStatus(err))
		req.Equal(infrastructure.MsgCannotGetMessage, infrastructure.ClientMessage(err))
	})
}
