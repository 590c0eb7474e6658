package storage

import (
	"database/sql"
	"time"
)

// Row types mirror the tables. The gorm tags only describe the schema for
// database.Migrate; reads and writes go through database/sql.

type Channel struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	Name        string         `gorm:"type:text;not null"`
	Description sql.NullString `gorm:"type:text"`
	Private     bool           `gorm:"not null;default:false"`
	CreatorID   int64          `gorm:"not null;index"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now()"`
	EditedAt    sql.NullTime   `gorm:"type:timestamptz"`

	Members  []ChannelMember `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	Messages []Message       `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

func (Channel) TableName() string { return "channels" }

// ChannelMember is unique per (channel, member) pair.
type ChannelMember struct {
	ChannelID int64 `gorm:"primaryKey;autoIncrement:false"`
	MemberID  int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (ChannelMember) TableName() string { return "channel_members" }

type Message struct {
	ID        int64        `gorm:"primaryKey;autoIncrement;index:idx_messages_channel_id_id,priority:2"`
	ChannelID int64        `gorm:"not null;index:idx_messages_channel_id_id,priority:1"`
	Body      string       `gorm:"type:text;not null"`
	CreatorID int64        `gorm:"not null"`
	CreatedAt time.Time    `gorm:"type:timestamptz;not null;default:now()"`
	EditedAt  sql.NullTime `gorm:"type:timestamptz"`
}

func (Message) TableName() string { return "messages" }

// Profile is a row of the users table, owned by the identity service. This
// service only reads it.
type Profile struct {
	ID        int64  `gorm:"primaryKey"`
	UserName  string `gorm:"type:text;not null"`
	FirstName string `gorm:"type:text"`
	LastName  string `gorm:"type:text"`
	PhotoURL  string `gorm:"type:text"`
}

func (Profile) TableName() string { return "users" }
