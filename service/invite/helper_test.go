package invite

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceDelete(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_delete"
		service   = p(t, namespace)
		roomID    = uint64(rand.Int63())
		otherID   = uint64(rand.Int63())
	)

	for _, i := range append(testBatch(roomID, 3), testBatch(otherID, 2)...) {
		if _, err := service.Put(namespace, i); err != nil {
			t.Fatal(err)
		}
	}

	if err := service.Delete(namespace, QueryOptions{}); !IsInvalidQuery(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidQuery)
	}

	err := service.Delete(namespace, QueryOptions{RoomIDs: []uint64{roomID}})
	if err != nil {
		t.Fatal(err)
	}

	list, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(list), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	for _, i := range list {
		if have, want := i.RoomID, otherID; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		invite    = testInvite(uint64(rand.Int63()))
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, invite)
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Fatalf("expected id to be set")
	}

	list, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(list), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}
	if have, want := list[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Status = StatusAccepted

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{
			updated.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := list[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := list[0].Status, StatusAccepted; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	missing := testInvite(created.RoomID)
	missing.ID = created.ID + 1

	if _, err := service.Put(namespace, missing); !IsInvalidInvite(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidInvite)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	cases := []*Invite{
		{UserID: 1, Status: StatusWaiting},
		{RoomID: 1, Status: StatusWaiting},
		{RoomID: 1, UserID: 1, Status: Status("PENDING")},
	}

	for _, i := range cases {
		if _, err := service.Put(namespace, i); !IsInvalidInvite(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidInvite)
		}
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		roomID    = uint64(rand.Int63())
		userID    = uint64(rand.Int63())
	)

	old := testInvite(uint64(rand.Int63()))
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	old.UserID = userID

	if _, err := service.Put(namespace, old); err != nil {
		t.Fatal(err)
	}

	for _, i := range testBatch(roomID, 4) {
		if _, err := service.Put(namespace, i); err != nil {
			t.Fatal(err)
		}
	}

	created, err := service.Put(namespace, testInvite(uint64(rand.Int63())))
	if err != nil {
		t.Fatal(err)
	}

	cases := map[*QueryOptions]int{
		{}:                                       6,
		{Before: time.Now().Add(-24 * time.Hour)}: 1,
		{IDs: []uint64{created.ID}}:              1,
		{Limit: 3}:                               3,
		{RoomIDs: []uint64{roomID}}:              4,
		{Statuses: []Status{StatusAccepted}}:     1,
		{Statuses: []Status{StatusWaiting}}:      5,
		{UserIDs: []uint64{userID}}:              1,
	}

	for opts, want := range cases {
		list, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(list); have != want {
			t.Errorf("%+v: have %v, want %v", *opts, have, want)
		}
	}

	list, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("list not ordered by creation: %v after %v", list[i], list[i-1])
		}
	}
}

func testInvite(roomID uint64) *Invite {
	return &Invite{
		RoomID: roomID,
		Status: StatusWaiting,
		UserID: uint64(rand.Int63()),
	}
}

// testBatch returns n invites for roomID where the first one is accepted.
func testBatch(roomID uint64, n int) List {
	is := List{}

	for i := 0; i < n; i++ {
		invite := testInvite(roomID)

		if i == 0 {
			invite.Status = StatusAccepted
		}

		is = append(is, invite)
	}

	return is
}
