package channel

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"messaging/infrastructure"
	"messaging/internal/models"
)

// memRepository is an in-memory Repository. Sessions share one memStore.
type memRepository struct {
	*memStore
}

type memStore struct {
	mu          sync.Mutex
	nextChannel int64
	nextMessage int64
	channels    map[int64]*models.Channel
	messages    map[int64]*models.Message
	profiles    map[int64]models.Profile

	opened    int
	closed    int
	mutations int
	fail      error
	clock     time.Time
}

func newMemRepository(profiles ...models.Profile) *memRepository {
	return &memRepository{&memStore{
		channels: map[int64]*models.Channel{},
		messages: map[int64]*models.Message{},
		profiles: lo.KeyBy(profiles, func(p models.Profile) int64 { return p.ID }),
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func (r *memRepository) Session(context.Context) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
	return &memSession{r.memStore}, nil
}

type memSession struct {
	*memStore
}

func (s *memSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func copyChannel(c *models.Channel) *models.Channel {
	cp := *c
	cp.MemberIDs = slices.Clone(c.MemberIDs)
	cp.Members = nil
	return &cp
}

func (s *memSession) Channel(_ context.Context, id int64) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	c, ok := s.channels[id]
	if !ok {
		return nil, fmt.Errorf("channel %d: %w", id, infrastructure.ErrChannelNotFound)
	}
	return copyChannel(c), nil
}

func (s *memSession) Message(_ context.Context, id int64) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *memSession) VisibleChannels(_ context.Context, userID int64) ([]*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	ids := lo.Keys(s.channels)
	slices.Sort(ids)
	var out []*models.Channel
	for _, id := range ids {
		if c := s.channels[id]; c.HasMember(userID) {
			out = append(out, copyChannel(c))
		}
	}
	return out, nil
}

func (s *memSession) CreateChannel(_ context.Context, channel *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.mutations++
	s.nextChannel++
	channel.ID = s.nextChannel
	channel.MemberIDs = lo.Uniq(append([]int64{channel.Creator.ID}, channel.MemberIDs...))
	stored := copyChannel(channel)
	stored.Creator = models.Profile{ID: channel.Creator.ID}
	s.channels[channel.ID] = stored
	return nil
}

func (s *memSession) UpdateChannel(_ context.Context, id int64, name, description *string, editedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	c := s.channels[id]
	if name != nil {
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}
	c.EditedAt = &editedAt
	return nil
}

func (s *memSession) DeleteChannel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	for mid, m := range s.messages {
		if m.ChannelID == id {
			delete(s.messages, mid)
		}
	}
	delete(s.channels, id)
	return nil
}

func (s *memSession) AddMember(_ context.Context, channelID, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.channels[channelID]
	if lo.Contains(c.MemberIDs, memberID) {
		return fmt.Errorf("member %d: %w", memberID, infrastructure.ErrMemberExists)
	}
	s.mutations++
	c.MemberIDs = append(c.MemberIDs, memberID)
	return nil
}

func (s *memSession) RemoveMember(_ context.Context, channelID, memberID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.channels[channelID]
	if !lo.Contains(c.MemberIDs, memberID) {
		return false, nil
	}
	s.mutations++
	c.MemberIDs = lo.Without(c.MemberIDs, memberID)
	return true, nil
}

func (s *memSession) Messages(_ context.Context, channelID, before int64, limit int) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := lo.FilterMap(lo.Values(s.messages), func(m *models.Message, _ int) (*models.Message, bool) {
		cp := *m
		return &cp, m.ChannelID == channelID && (before <= 0 || m.ID < before)
	})
	slices.SortFunc(page, func(a, b *models.Message) int { return int(b.ID - a.ID) })
	if len(page) > limit {
		page = page[:limit]
	}
	slices.Reverse(page)
	return page, nil
}

func (s *memSession) CreateMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	s.nextMessage++
	s.clock = s.clock.Add(time.Second)
	message.ID = s.nextMessage
	message.CreatedAt = s.clock
	message.EditedAt = nil
	s.messages[message.ID] = &models.Message{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
		Creator:   models.Profile{ID: message.Creator.ID},
	}
	return nil
}

func (s *memSession) UpdateMessage(_ context.Context, id int64, body string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	s.clock = s.clock.Add(time.Second)
	m := s.messages[id]
	m.Body = body
	editedAt := s.clock
	m.EditedAt = &editedAt
	return editedAt, nil
}

func (s *memSession) DeleteMessage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return fmt.Errorf("message %d: %w", id, infrastructure.ErrMessageNotFound)
	}
	s.mutations++
	delete(s.messages, id)
	return nil
}

func (s *memSession) Profiles(_ context.Context, ids []int64) (map[int64]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.PickByKeys(s.profiles, ids), nil
}

// seedMessages posts n messages by creatorID into channelID.
func (s *memStore) seedMessages(channelID, creatorID int64, n int) {
	sess := &memSession{s}
	for i := 0; i < n; i++ {
		_ = sess.CreateMessage(context.Background(), &models.Message{
			ChannelID: channelID,
			Body:      fmt.Sprintf("message %d", i+1),
			Creator:   models.Profile{ID: creatorID},
		})
	}
}
