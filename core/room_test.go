package core

import (
	"testing"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
)

func TestRoomListMine(t *testing.T) {
	var (
		env     = testSetupInvite(t)
		owner   = testUser(t, env.users, nil)
		targets = testUsers(t, env.users, 2)
		fn      = RoomListMine(env.members, env.rooms)
		rooms   = []uint64{}
	)

	for _, u := range targets {
		b, err := env.create()(testNamespace, testOrigin(owner), []uint64{u.ID})
		if err != nil {
			t.Fatal(err)
		}

		res, err := env.respond()(
			testNamespace,
			testOrigin(u),
			env.inviteFor(t, b, u).ID,
			invite.StatusAccepted,
		)
		if err != nil {
			t.Fatal(err)
		}

		rooms = append(rooms, res.Room.ID)
	}

	if _, err := env.create()(testNamespace, testOrigin(owner), targets.IDs()); err != nil {
		t.Fatal(err)
	}

	ms, err := env.members.Query(testNamespace, member.QueryOptions{
		RoomIDs: []uint64{
			rooms[0],
		},
		UserIDs: []uint64{
			owner.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	pinned := time.Now()
	ms[0].PinnedAt = &pinned

	if _, err := env.members.Put(testNamespace, ms[0]); err != nil {
		t.Fatal(err)
	}

	crs, err := fn(testNamespace, testOrigin(owner))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(crs), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := crs[0].Room.ID, rooms[0]; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := crs[1].Room.ID, rooms[1]; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	for _, cr := range crs {
		if have, want := len(cr.Members), 2; have != want {
			t.Errorf("have %v, want %v", have, want)
		}

		if have, want := cr.Member.UserID, owner.ID; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
