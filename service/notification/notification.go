package notification

import (
	"sort"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
	"github.com/DRLee98/random-chat-backend-sub000/platform/source"
)

const entity = "notifications"

// Supported categories.
const (
	CategoryInvite       Category = "invite"
	CategoryInviteStatus Category = "invite_status"
)

// Category distinguishes the cause of a Notification.
type Category string

// Consumer observes propagated notifications.
type Consumer interface {
	Consume() (*Delivery, error)
}

// Delivery transports a propagated Notification together with the information
// needed to ack it.
type Delivery struct {
	AckID        string
	ID           string
	Namespace    string
	Notification *Notification
	SentAt       time.Time
}

// List is a collection of notifications.
type List []*Notification

// IDs returns the ids of all notifications.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, n := range l {
		ids = append(ids, n.ID)
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

// Notification is a message addressed to a single user which is stored for
// later listing and handed to the push pipeline.
type Notification struct {
	Category  Category          `json:"category"`
	Data      map[string]string `json:"data,omitempty"`
	ID        uint64            `json:"id"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	Title     string            `json:"title"`
	UserID    uint64            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Validate performs semantic checks on the Notification values.
func (n *Notification) Validate() error {
	if n.UserID == 0 {
		return wrapError(ErrInvalidNotification, "user id not set")
	}

	if n.Title == "" {
		return wrapError(ErrInvalidNotification, "title not set")
	}

	switch n.Category {
	case CategoryInvite, CategoryInviteStatus:
		// valid
	default:
		return wrapError(ErrInvalidNotification, "unsupported category '%s'", n.Category)
	}

	return nil
}

// Producer hands notifications to the push pipeline.
type Producer interface {
	Propagate(namespace string, n *Notification) (string, error)
}

// QueryOptions to narrow-down notification queries.
type QueryOptions struct {
	Before  time.Time `json:"-"`
	IDs     []uint64  `json:"ids,omitempty"`
	Limit   int       `json:"-"`
	Read    *bool     `json:"read,omitempty"`
	UserIDs []uint64  `json:"user_ids,omitempty"`
}

// Service for notification interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, n *Notification) (*Notification, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Source encapsulates the push pipeline queue.
type Source interface {
	source.Acker
	Consumer
	Producer
}

// SourceMiddleware is a chainable behaviour modifier for Source.
type SourceMiddleware func(Source) Source

func sortList(ns List) List {
	sort.Sort(ns)

	return ns
}
