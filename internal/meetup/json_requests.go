package meetup

import "time"

type CreateMeetupRequest struct {
	Title       string    `json:"title" validate:"required"`
	StartsAt    time.Time `json:"datetime" validate:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

type JoinMeetupRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}
