package notification

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList(userID uint64) List {
	ns := List{}

	for i := 0; i < 5; i++ {
		ns = append(ns, testNotification(userID))
	}

	for i := 0; i < 3; i++ {
		n := testNotification(userID)
		n.Read = true

		ns = append(ns, n)
	}

	for i := 0; i < 4; i++ {
		ns = append(ns, testNotification(uint64(rand.Int63())))
	}

	return ns
}

func testNotification(userID uint64) *Notification {
	return &Notification{
		Category: CategoryInvite,
		Data: map[string]string{
			"room_id": generate.RandomString(6),
		},
		Message: generate.RandomString(24),
		Title:   generate.RandomString(8),
		UserID:  userID,
	}
}

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		userID    = uint64(rand.Int63())
		unread    = false
	)

	for _, n := range testList(userID) {
		if _, err := service.Put(namespace, n); err != nil {
			t.Fatal(err)
		}
	}

	count, err := service.Count(namespace, QueryOptions{
		Read:    &unread,
		UserIDs: []uint64{userID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, 5; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		n         = testNotification(uint64(rand.Int63()))
	)

	created, err := service.Put(namespace, n)
	if err != nil {
		t.Fatal(err)
	}

	list, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
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

	created.Read = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := list[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	missing := testNotification(n.UserID)
	missing.ID = created.ID + 1

	if _, err := service.Put(namespace, missing); !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	for _, n := range []*Notification{
		{Category: CategoryInvite, Title: "title"},
		{Category: CategoryInvite, UserID: 1},
		{Category: Category("unknown"), Title: "title", UserID: 1},
	} {
		if _, err := service.Put(namespace, n); !IsInvalidNotification(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidNotification)
		}
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		userID    = uint64(rand.Int63())
		read      = true
		created   = List{}
	)

	for _, n := range testList(userID) {
		stored, err := service.Put(namespace, n)
		if err != nil {
			t.Fatal(err)
		}

		created = append(created, stored)
	}

	cases := map[*QueryOptions]int{
		{}:                                    12,
		{IDs: created.IDs()[:2]}:              2,
		{Limit: 4}:                            4,
		{Read: &read}:                         3,
		{UserIDs: []uint64{userID}}:           8,
		{UserIDs: []uint64{userID}, Limit: 6}: 6,
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

	list, err := service.Query(namespace, QueryOptions{
		UserIDs: []uint64{userID},
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("unordered: %v after %v", list[i].CreatedAt, list[i-1].CreatedAt)
		}
	}

	before, err := service.Query(namespace, QueryOptions{
		Before:  list[0].CreatedAt,
		UserIDs: []uint64{userID},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range before {
		if !n.CreatedAt.Before(list[0].CreatedAt) {
			t.Errorf("have %v, want before %v", n.CreatedAt, list[0].CreatedAt)
		}
	}
}
