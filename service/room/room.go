package room

import (
	"sort"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
)

const entity = "room"

// Supported room kinds.
const (
	KindInvite Kind = "invite"
	KindChat   Kind = "chat"
)

// Room anchors a conversation. An invite room exists while its invite batch
// is pending, a chat room once the batch reached quorum.
type Room struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks for semantic correctness.
func (r *Room) Validate() error {
	switch r.Kind {
	case KindInvite, KindChat:
		return nil
	}

	return wrapError(ErrInvalidRoom, "unsupported kind '%s'", r.Kind)
}

// Kind distinguishes pending invite rooms from materialised chats.
type Kind string

// List is a collection of Room.
type List []*Room

// IDs returns the ids of all rooms.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, r := range l {
		ids = append(ids, r.ID)
	}

	return ids
}

// ToMap indexes the rooms by id.
func (l List) ToMap() Map {
	m := Map{}

	for _, r := range l {
		m[r.ID] = r
	}

	return m
}

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	if l[i].CreatedAt.Equal(l[j].CreatedAt) {
		return l[i].ID > l[j].ID
	}

	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// Map is a Room collection indexed by id.
type Map map[uint64]*Room

// QueryOptions to narrow-down Room queries.
type QueryOptions struct {
	Before time.Time `json:"before,omitempty"`
	IDs    []uint64  `json:"ids,omitempty"`
	Kinds  []Kind    `json:"kinds,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// Empty indicates if no constraint is set.
func (o QueryOptions) Empty() bool {
	return o.Before.IsZero() && len(o.IDs) == 0 && len(o.Kinds) == 0
}

// Service for Room interactions.
type Service interface {
	service.Lifecycle

	Delete(namespace string, opts QueryOptions) error
	Put(namespace string, r *Room) (*Room, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func sortList(l List) List {
	sort.Sort(l)

	return l
}
