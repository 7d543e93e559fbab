package invite

import (
	"sort"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
)

const entity = "invite"

// Supported invite statuses.
const (
	StatusWaiting  Status = "WAITING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Invite asks a user to join the chat anchored by its room. The creator of a
// batch holds an invite too, which starts out accepted.
type Invite struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"room_id"`
	Status    Status    `json:"status"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks for semantic correctness.
func (i *Invite) Validate() error {
	if i.RoomID == 0 {
		return wrapError(ErrInvalidInvite, "room id missing")
	}

	if i.UserID == 0 {
		return wrapError(ErrInvalidInvite, "user id missing")
	}

	if !i.Status.Valid() {
		return wrapError(ErrInvalidInvite, "unsupported status '%s'", i.Status)
	}

	return nil
}

// List is a collection of Invite.
type List []*Invite

// Accepted returns the number of accepted invites.
func (l List) Accepted() int {
	c := 0

	for _, i := range l {
		if i.Status == StatusAccepted {
			c++
		}
	}

	return c
}

// ByRoom groups the invites by their room id.
func (l List) ByRoom() map[uint64]List {
	m := map[uint64]List{}

	for _, i := range l {
		m[i.RoomID] = append(m[i.RoomID], i)
	}

	return m
}

// Pending indicates if any invite is still waiting for an answer.
func (l List) Pending() bool {
	for _, i := range l {
		if i.Status == StatusWaiting {
			return true
		}
	}

	return false
}

// RoomIDs returns the deduplicated room ids in order of appearance.
func (l List) RoomIDs() []uint64 {
	var (
		ids  = []uint64{}
		seen = map[uint64]struct{}{}
	)

	for _, i := range l {
		if _, ok := seen[i.RoomID]; ok {
			continue
		}

		seen[i.RoomID] = struct{}{}
		ids = append(ids, i.RoomID)
	}

	return ids
}

// UserIDs returns the user ids of the invites.
func (l List) UserIDs() []uint64 {
	ids := []uint64{}

	for _, i := range l {
		ids = append(ids, i.UserID)
	}

	return ids
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

// QueryOptions to narrow-down Invite queries.
type QueryOptions struct {
	Before   time.Time `json:"before,omitempty"`
	IDs      []uint64  `json:"ids,omitempty"`
	Limit    int       `json:"limit,omitempty"`
	RoomIDs  []uint64  `json:"room_ids,omitempty"`
	Statuses []Status  `json:"statuses,omitempty"`
	UserIDs  []uint64  `json:"user_ids,omitempty"`
}

// Empty indicates if no constraint is set.
func (o QueryOptions) Empty() bool {
	return o.Before.IsZero() &&
		len(o.IDs) == 0 &&
		len(o.RoomIDs) == 0 &&
		len(o.Statuses) == 0 &&
		len(o.UserIDs) == 0
}

// Service for Invite interactions.
type Service interface {
	service.Lifecycle

	// Delete removes all invites matching opts, unconstrained opts are refused.
	Delete(namespace string, opts QueryOptions) error
	Put(namespace string, i *Invite) (*Invite, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Status of an invite.
type Status string

// Valid indicates if s is one of the supported statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusAccepted, StatusRejected:
		return true
	}

	return false
}

func sortList(l List) List {
	sort.Sort(l)

	return l
}
