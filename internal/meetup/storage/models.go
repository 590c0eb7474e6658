package storage

import (
	"database/sql"
	"time"

	chstorage "messaging/internal/channel/storage"
)

// Meetup is a scheduled event with a public channel of its own. Dropping the
// channel drops the meetup and its attendees with it.
type Meetup struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	Title       string         `gorm:"type:text;not null"`
	StartsAt    time.Time      `gorm:"type:timestamptz;not null;index"`
	ChannelID   int64          `gorm:"not null;uniqueIndex"`
	Location    sql.NullString `gorm:"type:text"`
	Description sql.NullString `gorm:"type:text"`
	CreatorID   int64          `gorm:"not null"`

	Channel   chstorage.Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	Attendees []Attendee        `gorm:"foreignKey:MeetupID;constraint:OnDelete:CASCADE"`
}

func (Meetup) TableName() string { return "meetups" }

// Attendee is unique per (meetup, user) pair.
type Attendee struct {
	MeetupID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID   int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (Attendee) TableName() string { return "meetup_attendees" }
