package user

import (
	"reflect"
	"testing"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList() List {
	us := List{}

	for i := 0; i < 4; i++ {
		u := testUser()

		u.Deleted = true
		u.Enabled = false

		us = append(us, u)
	}

	for i := 0; i < 3; i++ {
		u := testUser()

		u.ChatEnabled = false

		us = append(us, u)
	}

	for i := 0; i < 5; i++ {
		us = append(us, testUser())
	}

	return us
}

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		enabled   = true
		namespace = "service_count"
		service   = p(t, namespace)
	)

	count, err := service.Count(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	for _, u := range testList() {
		if _, err := service.Put(namespace, u); err != nil {
			t.Fatal(err)
		}
	}

	count, err = service.Count(namespace, QueryOptions{
		ChatEnabled: &enabled,
		Enabled:     &enabled,
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
		user      = testUser()
	)

	created, err := service.Put(namespace, user)
	if err != nil {
		t.Fatal(err)
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

	created.ChatEnabled = false

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := list[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	dup := testUser()
	dup.Username = created.Username

	if _, err := service.Put(namespace, dup); !IsNotUnique(err) {
		t.Errorf("have %v, want %v", err, ErrNotUnique)
	}

	missing := testUser()
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

	cases := []*User{
		{Username: "a"},
		{Username: generate.RandomString(41)},
		{Username: "alice", Email: "not-an-email"},
	}

	for _, u := range cases {
		if _, err := service.Put(namespace, u); !IsInvalidUser(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidUser)
		}
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		deleted   = true
		enabled   = true
		disabled  = false
		namespace = "service_query"
		service   = p(t, namespace)
		ids       = []uint64{}
	)

	for _, u := range testList() {
		created, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}

		ids = append(ids, created.ID)
	}

	named, err := service.Put(namespace, testUser())
	if err != nil {
		t.Fatal(err)
	}

	cases := map[*QueryOptions]int{
		{}:                                         13,
		{ChatEnabled: &disabled}:                   3,
		{ChatEnabled: &enabled, Enabled: &enabled}: 6,
		{Deleted: &deleted}:                        4,
		{Enabled: &enabled}:                        9,
		{ExcludeIDs: ids[:6]}:                      7,
		{IDs: ids[4:7]}:                            3,
		{Limit: 5}:                                 5,
		{Usernames: []string{named.Username}}:      1,
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
}

func testUser() *User {
	return &User{
		ChatEnabled: true,
		Email:       generate.RandomString(8) + "@example.com",
		Enabled:     true,
		Username:    generate.RandomString(8),
	}
}
