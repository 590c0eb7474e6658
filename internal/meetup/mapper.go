package meetup

import (
	"database/sql"

	"github.com/samber/lo"

	"messaging/internal/meetup/storage"
)

func ConvertDBMeetupToMeetup(row *storage.Meetup) *Meetup {
	return &Meetup{
		ID:          row.ID,
		Title:       row.Title,
		StartsAt:    row.StartsAt,
		ChannelID:   row.ChannelID,
		Location:    row.Location.String,
		Description: row.Description.String,
		CreatorID:   row.CreatorID,
	}
}

func ConvertDBMeetupsToMeetups(rows []*storage.Meetup) []*Meetup {
	return lo.Map(rows, func(row *storage.Meetup, _ int) *Meetup {
		return ConvertDBMeetupToMeetup(row)
	})
}

func ConvertMeetupToDBMeetup(m *Meetup) *storage.Meetup {
	return &storage.Meetup{
		ID:          m.ID,
		Title:       m.Title,
		StartsAt:    m.StartsAt,
		ChannelID:   m.ChannelID,
		Location:    sql.NullString{String: m.Location, Valid: m.Location != ""},
		Description: sql.NullString{String: m.Description, Valid: m.Description != ""},
		CreatorID:   m.CreatorID,
	}
}
