package meetup

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"messaging/infrastructure"
)

// memRepository is an in-memory Repository.
type memRepository struct {
	mu        sync.Mutex
	next      int64
	meetups   map[int64]*Meetup
	attendees map[int64][]int64
	fail      error
}

func newMemRepository() *memRepository {
	return &memRepository{
		meetups:   map[int64]*Meetup{},
		attendees: map[int64][]int64{},
	}
}

func (r *memRepository) Create(_ context.Context, meetup *Meetup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.next++
	meetup.ID = r.next
	cp := *meetup
	r.meetups[cp.ID] = &cp
	return nil
}

func (r *memRepository) All(context.Context) ([]*Meetup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.sorted(lo.Values(r.meetups)), nil
}

func (r *memRepository) Join(_ context.Context, meetupID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.meetups[meetupID]; !ok {
		return fmt.Errorf("meetup %d: %w", meetupID, infrastructure.ErrMeetupNotFound)
	}
	if lo.Contains(r.attendees[userID], meetupID) {
		return fmt.Errorf("user %d of meetup %d: %w", userID, meetupID, infrastructure.ErrAlreadyJoined)
	}
	r.attendees[userID] = append(r.attendees[userID], meetupID)
	return nil
}

func (r *memRepository) Joined(_ context.Context, userID int64) ([]*Meetup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.sorted(lo.Values(lo.PickByKeys(r.meetups, r.attendees[userID]))), nil
}

func (r *memRepository) sorted(meetups []*Meetup) []*Meetup {
	out := lo.Map(meetups, func(m *Meetup, _ int) *Meetup {
		cp := *m
		return &cp
	})
	slices.SortFunc(out, func(a, b *Meetup) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out
}
