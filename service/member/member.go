package member

import (
	"sort"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
)

const entity = "member"

// Member is the per user side of a chat room.
type Member struct {
	DisplayName string     `json:"display_name"`
	ID          uint64     `json:"id"`
	NotiEnabled bool       `json:"noti_enabled"`
	PinnedAt    *time.Time `json:"pinned_at,omitempty"`
	RoomID      uint64     `json:"room_id"`
	UnreadCount int        `json:"unread_count"`
	UserID      uint64     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks for semantic correctness.
func (m *Member) Validate() error {
	if m.RoomID == 0 {
		return wrapError(ErrInvalidMember, "room id missing")
	}

	if m.UserID == 0 {
		return wrapError(ErrInvalidMember, "user id missing")
	}

	if m.UnreadCount < 0 {
		return wrapError(ErrInvalidMember, "negative unread count")
	}

	return nil
}

// List is a collection of Member.
type List []*Member

// ByRoom groups the members by their room id.
func (l List) ByRoom() map[uint64]List {
	m := map[uint64]List{}

	for _, member := range l {
		m[member.RoomID] = append(m[member.RoomID], member)
	}

	return m
}

// RoomIDs returns the deduplicated room ids in order of appearance.
func (l List) RoomIDs() []uint64 {
	var (
		ids  = []uint64{}
		seen = map[uint64]struct{}{}
	)

	for _, m := range l {
		if _, ok := seen[m.RoomID]; ok {
			continue
		}

		seen[m.RoomID] = struct{}{}
		ids = append(ids, m.RoomID)
	}

	return ids
}

// UserIDs returns the deduplicated user ids in order of appearance.
func (l List) UserIDs() []uint64 {
	var (
		ids  = []uint64{}
		seen = map[uint64]struct{}{}
	)

	for _, m := range l {
		if _, ok := seen[m.UserID]; ok {
			continue
		}

		seen[m.UserID] = struct{}{}
		ids = append(ids, m.UserID)
	}

	return ids
}

func (l List) Len() int {
	return len(l)
}

// Less puts pinned memberships first, most recently pinned on top, followed
// by the rest by recency.
func (l List) Less(i, j int) bool {
	a, b := l[i], l[j]

	switch {
	case a.PinnedAt != nil && b.PinnedAt == nil:
		return true
	case a.PinnedAt == nil && b.PinnedAt != nil:
		return false
	case a.PinnedAt != nil && b.PinnedAt != nil && !a.PinnedAt.Equal(*b.PinnedAt):
		return a.PinnedAt.After(*b.PinnedAt)
	}

	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}

	return a.CreatedAt.After(b.CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// QueryOptions to narrow-down Member queries.
type QueryOptions struct {
	IDs     []uint64 `json:"ids,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	RoomIDs []uint64 `json:"room_ids,omitempty"`
	UserIDs []uint64 `json:"user_ids,omitempty"`
}

// Empty indicates if no constraint is set.
func (o QueryOptions) Empty() bool {
	return len(o.IDs) == 0 && len(o.RoomIDs) == 0 && len(o.UserIDs) == 0
}

// Service for Member interactions.
type Service interface {
	service.Lifecycle

	Delete(namespace string, opts QueryOptions) error
	Put(namespace string, m *Member) (*Member, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func sortList(l List) List {
	sort.Sort(l)

	return l
}
