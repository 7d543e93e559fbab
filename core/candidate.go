package core

import (
	"math/rand"

	"github.com/DRLee98/random-chat-backend-sub000/service/block"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

var (
	defaultDeleted = false
	defaultEnabled = true
)

// InviteCandidatesFunc returns up to count random users the origin can invite.
type InviteCandidatesFunc func(
	ns string,
	origin Origin,
	count int,
) (user.List, error)

// InviteCandidates picks random chat-enabled users which neither block nor
// are blocked by the origin and do not share a chat with it yet.
func InviteCandidates(
	blocks block.Service,
	members member.Service,
	users user.Service,
) InviteCandidatesFunc {
	return func(
		ns string,
		origin Origin,
		count int,
	) (user.List, error) {
		if count < 1 {
			return nil, wrapError(ErrInvalidEntity, "count must be positive")
		}

		exclude, err := candidateExclusions(blocks, members, ns, origin.UserID)
		if err != nil {
			return nil, err
		}

		us, err := users.Query(ns, user.QueryOptions{
			ChatEnabled: &defaultEnabled,
			Deleted:     &defaultDeleted,
			Enabled:     &defaultEnabled,
			ExcludeIDs:  exclude,
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 0 {
			return nil, wrapError(ErrNoEligibleTargets, "user %d", origin.UserID)
		}

		rand.Shuffle(len(us), func(i, j int) {
			us[i], us[j] = us[j], us[i]
		})

		if len(us) > count {
			us = us[:count]
		}

		return us, nil
	}
}

// candidateExclusions collects the origin itself, the users it blocks, the
// users blocking it and everybody it already shares a chat with.
func candidateExclusions(
	blocks block.Service,
	members member.Service,
	ns string,
	origin uint64,
) ([]uint64, error) {
	var (
		ids  = []uint64{}
		seen = map[uint64]struct{}{}
	)

	add := func(is ...uint64) {
		for _, id := range is {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	add(origin)

	blocked, err := blocks.Query(ns, block.QueryOptions{
		Enabled: &defaultEnabled,
		FromIDs: []uint64{
			origin,
		},
	})
	if err != nil {
		return nil, err
	}

	add(blocked.ToIDs()...)

	blocking, err := blocks.Query(ns, block.QueryOptions{
		Enabled: &defaultEnabled,
		ToIDs: []uint64{
			origin,
		},
	})
	if err != nil {
		return nil, err
	}

	add(blocking.FromIDs()...)

	own, err := members.Query(ns, member.QueryOptions{
		UserIDs: []uint64{
			origin,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(own) == 0 {
		return ids, nil
	}

	present, err := members.Query(ns, member.QueryOptions{
		RoomIDs: own.RoomIDs(),
	})
	if err != nil {
		return nil, err
	}

	add(present.UserIDs()...)

	return ids, nil
}
