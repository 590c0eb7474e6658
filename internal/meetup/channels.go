//go:generate go run go.uber.org/mock/mockgen -source=channels.go -destination=mocks/mock_channels.go -package=mocks
package meetup

import (
	"context"

	"messaging/internal/channel"
	"messaging/internal/models"
)

// Channels opens and closes the public channel of a meetup. *channel.Service
// satisfies it, so channel events go out as for any other channel.
type Channels interface {
	CreateChannel(ctx context.Context, caller models.Profile, req channel.CreateChannelRequest) (*models.Channel, error)
	DeleteChannel(ctx context.Context, caller models.Profile, channelID int64) (*models.Channel, error)
}
