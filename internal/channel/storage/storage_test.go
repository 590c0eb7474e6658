package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"messaging/infrastructure"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var channelRowColumns = []string{"id", "name", "description", "private", "creator_id", "created_at", "edited_at"}

func TestPostgresStorage_SaveChannel(t *testing.T) {
	req := require.New(t)
	db, mock := newMock(t)
	s := NewPostgresStorage()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO channels").
		WithArgs("Hikers", sql.NullString{String: "trails", Valid: true}, true, int64(7), created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := s.SaveChannel(context.Background(), db, &Channel{
		Name:        "Hikers",
		Description: sql.NullString{String: "trails", Valid: true},
		Private:     true,
		CreatorID:   7,
		CreatedAt:   created,
	})

	req.NoError(err)
	req.Equal(int64(42), id)
}

func TestPostgresStorage_AddMember(t *testing.T) {
	t.Run("should insert the membership row", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO channel_members").
			WithArgs(int64(1), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req.NoError(NewPostgresStorage().AddMember(context.Background(), db, 1, 9))
	})

	t.Run("should map a unique violation to ErrMemberExists", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO channel_members").
			WithArgs(int64(1), int64(9)).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := NewPostgresStorage().AddMember(context.Background(), db, 1, 9)

		req.ErrorIs(err, infrastructure.ErrMemberExists)
	})

	t.Run("should pass other failures through", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO channel_members").WillReturnError(errors.New("conn reset"))

		err := NewPostgresStorage().AddMember(context.Background(), db, 1, 9)

		req.Error(err)
		req.NotErrorIs(err, infrastructure.ErrMemberExists)
	})
}

func TestPostgresStorage_ChannelByID(t *testing.T) {
	t.Run("should scan the channel row", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM channels c WHERE c.id = ").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(channelRowColumns).
				AddRow(3, "general", nil, false, 1, created, nil))

		channel, err := NewPostgresStorage().ChannelByID(context.Background(), db, 3)

		req.NoError(err)
		req.Equal("general", channel.Name)
		req.False(channel.Description.Valid)
		req.False(channel.EditedAt.Valid)
		req.Equal(int64(1), channel.CreatorID)
	})

	t.Run("should return ErrChannelNotFound for no rows", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM channels c WHERE c.id = ").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(channelRowColumns))

		_, err := NewPostgresStorage().ChannelByID(context.Background(), db, 99)

		req.ErrorIs(err, infrastructure.ErrChannelNotFound)
	})
}

func TestPostgresStorage_VisibleChannels(t *testing.T) {
	req := require.New(t)
	db, mock := newMock(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM channels c WHERE c.private = FALSE").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(channelRowColumns).
			AddRow(1, "general", nil, false, 1, created, nil).
			AddRow(2, "secret", "inner circle", true, 5, created, created))

	channels, err := NewPostgresStorage().VisibleChannels(context.Background(), db, 5)

	req.NoError(err)
	req.Len(channels, 2)
	req.True(channels[1].Private)
	req.Equal("inner circle", channels[1].Description.String)
	req.True(channels[1].EditedAt.Valid)
}

func TestPostgresStorage_MembersByChannel(t *testing.T) {
	t.Run("should group member ids by channel", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT channel_id, member_id FROM channel_members").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"channel_id", "member_id"}).
				AddRow(1, 2).AddRow(1, 3).AddRow(4, 2))

		members, err := NewPostgresStorage().MembersByChannel(context.Background(), db, []int64{1, 4})

		req.NoError(err)
		req.Equal(map[int64][]int64{1: {2, 3}, 4: {2}}, members)
	})

	t.Run("should not query for an empty id list", func(t *testing.T) {
		req := require.New(t)
		db, _ := newMock(t)

		members, err := NewPostgresStorage().MembersByChannel(context.Background(), db, nil)

		req.NoError(err)
		req.Empty(members)
	})
}

func TestPostgresStorage_UpdateChannel(t *testing.T) {
	edited := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	name := "renamed"

	t.Run("should only set the provided fields", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE channels SET").
			WithArgs(int64(3), sql.NullString{String: name, Valid: true}, sql.NullString{}, edited).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req.NoError(NewPostgresStorage().UpdateChannel(context.Background(), db, 3, &name, nil, edited))
	})

	t.Run("should return ErrChannelNotFound when nothing was updated", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE channels SET").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresStorage().UpdateChannel(context.Background(), db, 3, &name, nil, edited)

		req.ErrorIs(err, infrastructure.ErrChannelNotFound)
	})
}

func TestPostgresStorage_RemoveMember(t *testing.T) {
	req := require.New(t)
	db, mock := newMock(t)
	s := NewPostgresStorage()
	mock.ExpectExec("DELETE FROM channel_members WHERE channel_id = (.+) AND member_id = ").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM channel_members WHERE channel_id = (.+) AND member_id = ").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.RemoveMember(context.Background(), db, 1, 2)
	req.NoError(err)
	req.True(removed)

	removed, err = s.RemoveMember(context.Background(), db, 1, 2)
	req.NoError(err)
	req.False(removed)
}

func TestPostgresStorage_ChannelMessages(t *testing.T) {
	columns := []string{"id", "channel_id", "body", "creator_id", "created_at", "edited_at"}
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should take the latest messages and return them oldest first", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery(`SELECT (.+) FROM \( SELECT (.+) FROM messages WHERE channel_id = (.+) ORDER BY id DESC LIMIT (.+) \) page ORDER BY id`).
			WithArgs(int64(1), 100).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(11, 1, "first", 3, created, nil).
				AddRow(12, 1, "second", 2, created, nil))

		messages, err := NewPostgresStorage().ChannelMessages(context.Background(), db, 1, 0, 100)

		req.NoError(err)
		req.Len(messages, 2)
		req.Equal(int64(11), messages[0].ID)
		req.Equal("second", messages[1].Body)
	})

	t.Run("should restrict to ids below the cursor", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM messages WHERE channel_id = (.+) AND id < ").
			WithArgs(int64(1), int64(12), 100).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(11, 1, "first", 3, created, nil))

		messages, err := NewPostgresStorage().ChannelMessages(context.Background(), db, 1, 12, 100)

		req.NoError(err)
		req.Len(messages, 1)
	})

	t.Run("should return an empty page for a quiet channel", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM messages").WillReturnRows(sqlmock.NewRows(columns))

		messages, err := NewPostgresStorage().ChannelMessages(context.Background(), db, 1, 0, 100)

		req.NoError(err)
		req.NotNil(messages)
		req.Empty(messages)
	})
}

func TestPostgresStorage_Messages(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should fill id and creation time on save", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("INSERT INTO messages").
			WithArgs(int64(1), "hello", int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(77, created))
		message := &Message{ChannelID: 1, Body: "hello", CreatorID: 2}

		req.NoError(NewPostgresStorage().SaveMessage(context.Background(), db, message))
		req.Equal(int64(77), message.ID)
		req.Equal(created, message.CreatedAt)
	})

	t.Run("should return ErrMessageNotFound on lookup of an unknown id", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM messages WHERE id = ").
			WithArgs(int64(5)).
			WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresStorage().MessageByID(context.Background(), db, 5)

		req.ErrorIs(err, infrastructure.ErrMessageNotFound)
	})

	t.Run("should return the edit time on update", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery("UPDATE messages SET body = ").
			WithArgs(int64(5), "fixed").
			WillReturnRows(sqlmock.NewRows([]string{"edited_at"}).AddRow(created))

		editedAt, err := NewPostgresStorage().UpdateMessageBody(context.Background(), db, 5, "fixed")

		req.NoError(err)
		req.Equal(created, editedAt)
	})

	t.Run("should report ErrMessageNotFound when deleting nothing", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec("DELETE FROM messages WHERE id = ").
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresStorage().DeleteMessage(context.Background(), db, 5)

		req.ErrorIs(err, infrastructure.ErrMessageNotFound)
	})
}

func TestPostgresStorage_ProfilesByIDs(t *testing.T) {
	req := require.New(t)
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "first_name", "last_name", "photo_url"}).
			AddRow(1, "ada", "Ada", "Lovelace", "https://x/1.png"))

	profiles, err := NewPostgresStorage().ProfilesByIDs(context.Background(), db, []int64{1, 2})

	req.NoError(err)
	req.Equal([]Profile{{ID: 1, UserName: "ada", FirstName: "Ada", LastName: "Lovelace", PhotoURL: "https://x/1.png"}}, profiles)
}
