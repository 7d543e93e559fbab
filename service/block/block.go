package block

import (
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
)

const entity = "blocks"

// Block represents a user hiding another user from random matching.
type Block struct {
	Enabled   bool      `json:"enabled"`
	FromID    uint64    `json:"user_from_id"`
	ToID      uint64    `json:"user_to_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs checks on the Block values for completeness and
// correctness.
func (b Block) Validate() error {
	if b.FromID == 0 {
		return wrapError(ErrInvalidBlock, "from id not set")
	}

	if b.ToID == 0 {
		return wrapError(ErrInvalidBlock, "to id not set")
	}

	if b.FromID == b.ToID {
		return wrapError(ErrInvalidBlock, "self block")
	}

	return nil
}

// List is a collection of Blocks.
type List []*Block

// FromIDs returns the extracted FromID of all blocks as list.
func (l List) FromIDs() []uint64 {
	ids := []uint64{}

	for _, b := range l {
		ids = append(ids, b.FromID)
	}

	return ids
}

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// OtherIDs returns the user ids not being the origin.
func (l List) OtherIDs(origin uint64) []uint64 {
	is := []uint64{}

	for _, b := range l {
		if b.FromID == origin {
			is = append(is, b.ToID)
		} else {
			is = append(is, b.FromID)
		}
	}

	return is
}

// ToIDs returns the extracted ToID of all blocks as list.
func (l List) ToIDs() []uint64 {
	ids := []uint64{}

	for _, b := range l {
		ids = append(ids, b.ToID)
	}

	return ids
}

// QueryOptions are used to narrow down Block queries.
type QueryOptions struct {
	Enabled *bool    `json:"enabled,omitempty"`
	FromIDs []uint64 `json:"from_ids,omitempty"`
	Limit   int      `json:"-"`
	ToIDs   []uint64 `json:"to_ids,omitempty"`
}

// Service for block interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, block *Block) (*Block, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
