package meetup

import "time"

// Meetup is an event users can browse and join. Its conversation happens in
// the public channel created along with it.
type Meetup struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"datetime"`
	ChannelID   int64     `json:"channel"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatorID   int64     `json:"creator"`
}
