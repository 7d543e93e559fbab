package session

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList() List {
	ss := List{}

	for i := 0; i < 6; i++ {
		ss = append(ss, testSession())
	}

	for i := 0; i < 3; i++ {
		s := testSession()
		s.Enabled = false

		ss = append(ss, s)
	}

	return ss
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		enabled   = true
		namespace = "service_put"
		service   = p(t, namespace)
		session   = testSession()
	)

	created, err := service.Put(namespace, session)
	if err != nil {
		t.Fatal(err)
	}

	list, err := service.Query(namespace, QueryOptions{
		Enabled: &enabled,
		IDs: []string{
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

	created.Enabled = false

	if _, err := service.Put(namespace, created); err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		Enabled: &enabled,
		IDs: []string{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(list), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	missing := testSession()
	missing.ID = generate.RandomString(40)

	if _, err := service.Put(namespace, missing); !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		enabled   = true
		namespace = "service_query"
		service   = p(t, namespace)
	)

	ss, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ss), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	created, err := service.Put(namespace, testSession())
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range testList() {
		if _, err := service.Put(namespace, s); err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                      10,
		{DeviceIDs: []string{created.DeviceID}}: 1,
		{Enabled: &enabled}:                     7,
		{IDs: []string{created.ID}}:             1,
		{UserIDs: []uint64{created.UserID}}:     1,
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

func testSession() *Session {
	return &Session{
		DeviceID: generate.RandomString(24),
		Enabled:  true,
		UserID:   uint64(rand.Int63()),
	}
}
