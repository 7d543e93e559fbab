package member

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

	for _, m := range append(testRoom(roomID, 3), testRoom(otherID, 2)...) {
		if _, err := service.Put(namespace, m); err != nil {
			t.Fatal(err)
		}
	}

	if err := service.Delete(namespace, QueryOptions{}); !IsInvalidQuery(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidQuery)
	}

	if err := service.Delete(namespace, QueryOptions{RoomIDs: []uint64{roomID}}); err != nil {
		t.Fatal(err)
	}

	ms, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := ms.RoomIDs(), []uint64{otherID}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		member    = testMember(uint64(rand.Int63()))
	)

	created, err := service.Put(namespace, member)
	if err != nil {
		t.Fatal(err)
	}

	ms, err := service.Query(namespace, QueryOptions{IDs: []uint64{created.ID}})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ms), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := ms[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	dup := testMember(created.RoomID)
	dup.UserID = created.UserID

	if _, err := service.Put(namespace, dup); !IsMemberExists(err) {
		t.Errorf("have %v, want %v", err, ErrMemberExists)
	}

	pinned := time.Now()

	created.DisplayName = "renamed"
	created.NotiEnabled = false
	created.PinnedAt = &pinned
	created.UnreadCount = 3

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	ms, err = service.Query(namespace, QueryOptions{UserIDs: []uint64{created.UserID}})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := ms[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := service.Put(namespace, &Member{UserID: 1}); !IsInvalidMember(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidMember)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		roomID    = uint64(rand.Int63())
		userID    = uint64(rand.Int63())
	)

	for _, m := range testRoom(roomID, 3) {
		if _, err := service.Put(namespace, m); err != nil {
			t.Fatal(err)
		}
	}

	pinnedAt := time.Now().Add(-time.Hour)

	for i := 0; i < 2; i++ {
		m := testMember(uint64(rand.Int63()))
		m.UserID = userID

		if i == 0 {
			m.PinnedAt = &pinnedAt
		}

		if _, err := service.Put(namespace, m); err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                          5,
		{Limit: 2}:                  2,
		{RoomIDs: []uint64{roomID}}: 3,
		{UserIDs: []uint64{userID}}: 2,
	}

	for opts, want := range cases {
		ms, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(ms); have != want {
			t.Errorf("%+v: have %v, want %v", *opts, have, want)
		}
	}

	ms, err := service.Query(namespace, QueryOptions{UserIDs: []uint64{userID}})
	if err != nil {
		t.Fatal(err)
	}

	if ms[0].PinnedAt == nil {
		t.Errorf("expected pinned membership first")
	}
}

func testMember(roomID uint64) *Member {
	return &Member{
		DisplayName: "alice, bob",
		NotiEnabled: true,
		RoomID:      roomID,
		UserID:      uint64(rand.Int63()),
	}
}

func testRoom(roomID uint64, n int) List {
	ms := List{}

	for i := 0; i < n; i++ {
		ms = append(ms, testMember(roomID))
	}

	return ms
}
