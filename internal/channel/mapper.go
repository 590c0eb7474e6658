package channel

import (
	"database/sql"
	"time"

	"github.com/samber/lo"

	"messaging/internal/channel/storage"
	"messaging/internal/models"
)

// ConvertDBChannelToChannel maps a row to a channel whose creator is not yet
// expanded beyond its id.
func ConvertDBChannelToChannel(row *storage.Channel, memberIDs []int64) *models.Channel {
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	return &models.Channel{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Private:     row.Private,
		CreatedAt:   row.CreatedAt,
		Creator:     models.Profile{ID: row.CreatorID},
		EditedAt:    timePtr(row.EditedAt),
		MemberIDs:   memberIDs,
	}
}

func ConvertChannelToDBChannel(c *models.Channel) *storage.Channel {
	return &storage.Channel{
		ID:          c.ID,
		Name:        c.Name,
		Description: sql.NullString{String: c.Description, Valid: c.Description != ""},
		Private:     c.Private,
		CreatorID:   c.Creator.ID,
		CreatedAt:   c.CreatedAt,
	}
}

func ConvertDBMessageToMessage(row *storage.Message) *models.Message {
	return &models.Message{
		ID:        row.ID,
		ChannelID: row.ChannelID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
		Creator:   models.Profile{ID: row.CreatorID},
		EditedAt:  timePtr(row.EditedAt),
	}
}

func ConvertDBMessagesToMessages(rows []*storage.Message) []*models.Message {
	return lo.Map(rows, func(row *storage.Message, _ int) *models.Message {
		return ConvertDBMessageToMessage(row)
	})
}

func ConvertDBProfilesToProfiles(rows []storage.Profile) []models.Profile {
	return lo.Map(rows, func(row storage.Profile, _ int) models.Profile {
		return models.Profile{
			ID:        row.ID,
			UserName:  row.UserName,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			PhotoURL:  row.PhotoURL,
		}
	})
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
