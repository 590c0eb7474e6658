package channel

import "messaging/internal/models"

type CreateChannelRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Private     bool             `json:"private"`
	Members     []models.Profile `json:"members" validate:"dive"`
}

// UpdateChannelRequest leaves a field untouched when it is absent.
type UpdateChannelRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// PostMessageRequest only reads the body. Any id, creator or timestamp sent by
// the client is ignored.
type PostMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type UpdateMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// MemberRequest accepts a full profile but only the id is used.
type MemberRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}
