package models

import (
	"time"

	"github.com/samber/lo"
)

// Profile is the public view of a user. It is also the shape of the identity
// claim forwarded by the gateway.
type Profile struct {
	ID        int64  `json:"id" validate:"gt=0"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoURL"`
}

type Channel struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Private     bool       `json:"private"`
	Members     []Profile  `json:"members,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Creator     Profile    `json:"creator"`
	EditedAt    *time.Time `json:"editedAt"`

	// MemberIDs is the explicit member set as stored. It always contains the
	// creator. Only meaningful for authorization when Private is set.
	MemberIDs []int64 `json:"-"`
}

// HasMember reports whether userID may read and post in the channel.
func (c *Channel) HasMember(userID int64) bool {
	if !c.Private {
		return true
	}
	return lo.Contains(c.MemberIDs, userID)
}

// Recipients returns the identities to notify about a change to the channel.
// An empty set addresses every connected user, which is how public channels
// are delivered.
func (c *Channel) Recipients() []int64 {
	if !c.Private {
		return []int64{}
	}
	return lo.Uniq(c.MemberIDs)
}

type Message struct {
	ID        int64      `json:"id"`
	ChannelID int64      `json:"channelID"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	Creator   Profile    `json:"creator"`
	EditedAt  *time.Time `json:"editedAt"`
}
