package session

import (
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
)

// DeviceIDUnknown is the default for untracked devices.
const DeviceIDUnknown = "unknown"

const idLen = 30

// List is a collection of sessions.
type List []*Session

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// QueryOptions is used to narrow-down session queries.
type QueryOptions struct {
	DeviceIDs []string `json:"device_ids,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
	IDs       []string `json:"-"`
	UserIDs   []uint64 `json:"user_ids,omitempty"`
}

// Service for session interactions.
type Service interface {
	service.Lifecycle

	Put(namespace string, session *Session) (*Session, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Session attaches a session token to a user. Sessions are issued outside of
// this service and only looked up here.
type Session struct {
	CreatedAt time.Time `json:"created_at"`
	DeviceID  string    `json:"device_id"`
	Enabled   bool      `json:"enabled"`
	ID        string    `json:"-"`
	UserID    uint64    `json:"user_id"`
}

// Validate performs semantic checks on the Session.
func (s *Session) Validate() error {
	if s.DeviceID == "" {
		return wrapError(ErrInvalidSession, "device id must be set")
	}

	if s.UserID == 0 {
		return wrapError(ErrInvalidSession, "user id must be set")
	}

	return nil
}

func generateID() (string, error) {
	return generate.RandomStringSafe(idLen)
}
