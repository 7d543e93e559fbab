package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/lock"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pubsub"
	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
	"github.com/DRLee98/random-chat-backend-sub000/service/room"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

// InviteTTL is the time a batch is kept before the sweep discards it.
const InviteTTL = 24 * time.Hour

// TopicInviteStatusChanged carries InviteStatusChanged payloads.
const TopicInviteStatusChanged = "inviteStatusChanged"

const displayNameSeparator = ", "

// InviteBatch is the set of invites anchored by one room.
type InviteBatch struct {
	Invites invite.List `json:"invites"`
	Room    *room.Room  `json:"room"`
}

// InviteStatusChanged is published to every sibling of an answered invite.
// UserID addresses the receiving user.
type InviteStatusChanged struct {
	InviteID    uint64        `json:"invite_id"`
	ResponderID uint64        `json:"responder_id"`
	RoomID      uint64        `json:"room_id"`
	Status      invite.Status `json:"status"`
	UserID      uint64        `json:"user_id"`
}

// RespondResult is the outcome of an answered invite. Room and Members are
// only set once the batch reached quorum.
type RespondResult struct {
	Invite  *invite.Invite `json:"invite"`
	Members member.List    `json:"members,omitempty"`
	Room    *room.Room     `json:"room,omitempty"`
}

// InviteCreateFunc starts a new invite batch for the origin.
type InviteCreateFunc func(
	ns string,
	origin Origin,
	targetIDs []uint64,
) (*InviteBatch, error)

// InviteCreate resolves the targets, anchors a new invite room and invites
// every valid target. The origin holds an accepted invite of its own.
func InviteCreate(
	invites invite.Service,
	rooms room.Service,
	users user.Service,
	notify NotifyFunc,
) InviteCreateFunc {
	return func(
		ns string,
		origin Origin,
		targetIDs []uint64,
	) (*InviteBatch, error) {
		ids := []uint64{}

		for _, id := range targetIDs {
			if id != origin.UserID {
				ids = append(ids, id)
			}
		}

		us, err := user.ListFromIDs(users, ns, ids...)
		if err != nil {
			return nil, err
		}

		targets := user.List{}

		for _, u := range us {
			if !u.Deleted {
				targets = append(targets, u)
			}
		}

		if len(targets) == 0 {
			return nil, wrapError(ErrNoValidTargets, "user %d", origin.UserID)
		}

		sort.Slice(targets, func(i, j int) bool {
			return targets[i].ID < targets[j].ID
		})

		owners, err := user.ListFromIDs(users, ns, origin.UserID)
		if err != nil {
			return nil, err
		}

		if len(owners) != 1 {
			return nil, wrapError(ErrNotFound, "user %d", origin.UserID)
		}

		r, err := rooms.Put(ns, &room.Room{
			Kind: room.KindInvite,
		})
		if err != nil {
			return nil, err
		}

		batch := &InviteBatch{
			Invites: invite.List{},
			Room:    r,
		}

		self, err := invites.Put(ns, &invite.Invite{
			RoomID: r.ID,
			Status: invite.StatusAccepted,
			UserID: origin.UserID,
		})
		if err != nil {
			return nil, discardRoom(invites, rooms, ns, r.ID, err)
		}

		batch.Invites = append(batch.Invites, self)

		for _, t := range targets {
			i, err := invites.Put(ns, &invite.Invite{
				RoomID: r.ID,
				Status: invite.StatusWaiting,
				UserID: t.ID,
			})
			if err != nil {
				return nil, discardRoom(invites, rooms, ns, r.ID, err)
			}

			batch.Invites = append(batch.Invites, i)
		}

		for _, i := range batch.Invites[1:] {
			_ = notify(ns, &notification.Notification{
				Category: notification.CategoryInvite,
				Data: map[string]string{
					"invite_id": strconv.FormatUint(i.ID, 10),
					"room_id":   strconv.FormatUint(r.ID, 10),
				},
				Message: fmt.Sprintf("%s invited you to chat", owners[0].Username),
				Title:   "New chat invite",
				UserID:  i.UserID,
			})
		}

		return batch, nil
	}
}

// InviteExpireFunc discards every batch with an invite older than InviteTTL
// and returns the number of discarded rooms.
type InviteExpireFunc func(ns string, now time.Time) (int, error)

// InviteExpire removes stale batches unconditionally. Each room is removed
// under the same lock InviteRespond resolves it with. A failing room does not
// stop the sweep, all failures are returned together.
func InviteExpire(
	invites invite.Service,
	locker lock.Locker,
	rooms room.Service,
) InviteExpireFunc {
	return func(ns string, now time.Time) (int, error) {
		is, err := invites.Query(ns, invite.QueryOptions{
			Before: now.Add(-InviteTTL),
		})
		if err != nil {
			return 0, err
		}

		var (
			count = 0
			errs  = []error{}
		)

		for _, id := range is.RoomIDs() {
			expired, err := expireBatch(invites, locker, rooms, ns, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("room %d: %w", id, err))
				continue
			}

			if expired {
				count++
			}
		}

		return count, errors.Join(errs...)
	}
}

func expireBatch(
	invites invite.Service,
	locker lock.Locker,
	rooms room.Service,
	ns string,
	roomID uint64,
) (bool, error) {
	release, err := locker.Lock(roomLockKey(ns, roomID))
	if err != nil {
		return false, err
	}
	defer release()

	is, err := invites.Query(ns, invite.QueryOptions{
		RoomIDs: []uint64{
			roomID,
		},
	})
	if err != nil {
		return false, err
	}

	// Resolved while waiting for the lock.
	if len(is) == 0 {
		return false, nil
	}

	return true, deleteBatch(invites, rooms, ns, roomID)
}

// InviteListPendingFunc returns the batches the origin takes part in.
type InviteListPendingFunc func(ns string, origin Origin) ([]*InviteBatch, error)

// InviteListPending returns every unresolved batch the origin holds an invite
// for, newest room first.
func InviteListPending(
	invites invite.Service,
	rooms room.Service,
) InviteListPendingFunc {
	return func(ns string, origin Origin) ([]*InviteBatch, error) {
		own, err := invites.Query(ns, invite.QueryOptions{
			UserIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(own) == 0 {
			return []*InviteBatch{}, nil
		}

		rs, err := rooms.Query(ns, room.QueryOptions{
			IDs: own.RoomIDs(),
			Kinds: []room.Kind{
				room.KindInvite,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(rs) == 0 {
			return []*InviteBatch{}, nil
		}

		is, err := invites.Query(ns, invite.QueryOptions{
			RoomIDs: rs.IDs(),
		})
		if err != nil {
			return nil, err
		}

		byRoom := is.ByRoom()
		sort.Sort(rs)

		bs := []*InviteBatch{}

		for _, r := range rs {
			bs = append(bs, &InviteBatch{
				Invites: byRoom[r.ID],
				Room:    r,
			})
		}

		return bs, nil
	}
}

// InviteRespondFunc answers an invite on behalf of the origin.
type InviteRespondFunc func(
	ns string,
	origin Origin,
	inviteID uint64,
	decision invite.Status,
) (*RespondResult, error)

// InviteRespond records the decision, informs the siblings and resolves the
// batch once nobody is left waiting. Resolution of a room is serialised
// through the Locker so a batch materialises at most once.
func InviteRespond(
	invites invite.Service,
	locker lock.Locker,
	members member.Service,
	rooms room.Service,
	users user.Service,
	publisher pubsub.Publisher,
	notify NotifyFunc,
) InviteRespondFunc {
	return func(
		ns string,
		origin Origin,
		inviteID uint64,
		decision invite.Status,
	) (*RespondResult, error) {
		if decision != invite.StatusAccepted && decision != invite.StatusRejected {
			return nil, wrapError(ErrInvalidDecision, "'%s'", decision)
		}

		is, err := invites.Query(ns, invite.QueryOptions{
			IDs: []uint64{
				inviteID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(is) != 1 {
			return nil, wrapError(ErrInviteNotFound, "invite %d", inviteID)
		}

		if is[0].UserID != origin.UserID {
			return nil, wrapError(
				ErrNotInviteOwner,
				"invite %d for user %d",
				inviteID,
				origin.UserID,
			)
		}

		release, err := locker.Lock(roomLockKey(ns, is[0].RoomID))
		if err != nil {
			return nil, err
		}
		defer release()

		batch, err := invites.Query(ns, invite.QueryOptions{
			RoomIDs: []uint64{
				is[0].RoomID,
			},
		})
		if err != nil {
			return nil, err
		}

		var (
			i        *invite.Invite
			siblings = invite.List{}
		)

		for _, b := range batch {
			if b.ID == inviteID {
				i = b
				continue
			}

			siblings = append(siblings, b)
		}

		if i == nil {
			return nil, wrapError(ErrInviteNotFound, "invite %d", inviteID)
		}

		if i.Status != invite.StatusWaiting {
			return nil, wrapError(
				ErrAlreadyResolved,
				"invite %d is %s",
				inviteID,
				i.Status,
			)
		}

		i.Status = decision

		i, err = invites.Put(ns, i)
		if err != nil {
			return nil, err
		}

		for _, s := range siblings {
			_ = publisher.Publish(TopicInviteStatusChanged, &InviteStatusChanged{
				InviteID:    i.ID,
				ResponderID: origin.UserID,
				RoomID:      i.RoomID,
				Status:      i.Status,
				UserID:      s.UserID,
			})

			_ = notify(ns, &notification.Notification{
				Category: notification.CategoryInviteStatus,
				Data: map[string]string{
					"invite_id": strconv.FormatUint(i.ID, 10),
					"room_id":   strconv.FormatUint(i.RoomID, 10),
					"status":    string(i.Status),
				},
				Message: fmt.Sprintf("An invite was %s", strings.ToLower(string(i.Status))),
				Title:   "Chat invite answered",
				UserID:  s.UserID,
			})
		}

		res := &RespondResult{
			Invite: i,
		}

		all := append(invite.List{i}, siblings...)

		if all.Pending() {
			return res, nil
		}

		if all.Accepted() < 2 {
			return res, deleteBatch(invites, rooms, ns, i.RoomID)
		}

		r, ms, err := materialise(members, rooms, users, ns, all)
		if err != nil {
			return nil, reopenInvite(invites, ns, i, err)
		}

		if err := deleteBatch(invites, rooms, ns, i.RoomID); err != nil {
			err = discardChat(members, rooms, ns, r.ID, err)

			return nil, reopenInvite(invites, ns, i, err)
		}

		res.Members = ms
		res.Room = r

		return res, nil
	}
}

func deleteBatch(
	invites invite.Service,
	rooms room.Service,
	ns string,
	roomID uint64,
) error {
	err := invites.Delete(ns, invite.QueryOptions{
		RoomIDs: []uint64{
			roomID,
		},
	})
	if err != nil {
		return err
	}

	return rooms.Delete(ns, room.QueryOptions{
		IDs: []uint64{
			roomID,
		},
	})
}

func discardRoom(
	invites invite.Service,
	rooms room.Service,
	ns string,
	roomID uint64,
	cause error,
) error {
	if err := deleteBatch(invites, rooms, ns, roomID); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

// discardChat removes a chat room and whatever members it got so far.
func discardChat(
	members member.Service,
	rooms room.Service,
	ns string,
	roomID uint64,
	cause error,
) error {
	errs := []error{cause}

	err := members.Delete(ns, member.QueryOptions{
		RoomIDs: []uint64{
			roomID,
		},
	})
	if err != nil {
		errs = append(errs, err)
	}

	err = rooms.Delete(ns, room.QueryOptions{
		IDs: []uint64{
			roomID,
		},
	})
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// reopenInvite puts the invite back to waiting so the decision can be sent
// again.
func reopenInvite(
	invites invite.Service,
	ns string,
	i *invite.Invite,
	cause error,
) error {
	i.Status = invite.StatusWaiting

	if _, err := invites.Put(ns, i); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

// materialise creates the chat room with one member per accepted invite.
// Every member sees the other participants' usernames as the room name.
func materialise(
	members member.Service,
	rooms room.Service,
	users user.Service,
	ns string,
	batch invite.List,
) (*room.Room, member.List, error) {
	accepted := []uint64{}

	for _, i := range batch {
		if i.Status == invite.StatusAccepted {
			accepted = append(accepted, i.UserID)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i] < accepted[j]
	})

	um, err := user.MapFromIDs(users, ns, accepted...)
	if err != nil {
		return nil, nil, err
	}

	r, err := rooms.Put(ns, &room.Room{
		Kind: room.KindChat,
	})
	if err != nil {
		return nil, nil, err
	}

	ms := member.List{}

	for _, id := range accepted {
		m, err := members.Put(ns, &member.Member{
			DisplayName: displayName(um, accepted, id),
			NotiEnabled: true,
			RoomID:      r.ID,
			UserID:      id,
		})
		if err != nil {
			return nil, nil, discardChat(members, rooms, ns, r.ID, err)
		}

		ms = append(ms, m)
	}

	return r, ms, nil
}

func displayName(um user.Map, ids []uint64, self uint64) string {
	names := []string{}

	for _, id := range ids {
		if id == self {
			continue
		}

		if u, ok := um[id]; ok {
			names = append(names, u.Username)
		}
	}

	return strings.Join(names, displayNameSeparator)
}

func roomLockKey(ns string, roomID uint64) string {
	return fmt.Sprintf("%s.invite.room.%d", ns, roomID)
}
