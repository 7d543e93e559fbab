package room

import (
	"reflect"
	"testing"
	"time"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceDelete(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_delete"
		service   = p(t, namespace)
	)

	invite, err := service.Put(namespace, &Room{Kind: KindInvite})
	if err != nil {
		t.Fatal(err)
	}

	chat, err := service.Put(namespace, &Room{Kind: KindChat})
	if err != nil {
		t.Fatal(err)
	}

	if err := service.Delete(namespace, QueryOptions{Limit: 1}); !IsInvalidQuery(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidQuery)
	}

	if err := service.Delete(namespace, QueryOptions{IDs: []uint64{invite.ID}}); err != nil {
		t.Fatal(err)
	}

	// Deleting twice is a no-op.
	if err := service.Delete(namespace, QueryOptions{IDs: []uint64{invite.ID}}); err != nil {
		t.Fatal(err)
	}

	rs, err := service.Query(namespace, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := rs.IDs(), []uint64{chat.ID}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, &Room{Kind: KindInvite})
	if err != nil {
		t.Fatal(err)
	}

	rs, err := service.Query(namespace, QueryOptions{IDs: []uint64{created.ID}})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(rs), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := rs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Kind = KindChat

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	rs, err = service.Query(namespace, QueryOptions{Kinds: []Kind{KindChat}})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := rs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := service.Put(namespace, &Room{Kind: Kind("dm")}); !IsInvalidRoom(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidRoom)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
	)

	old := &Room{Kind: KindInvite, CreatedAt: time.Now().Add(-25 * time.Hour)}

	if _, err := service.Put(namespace, old); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := service.Put(namespace, &Room{Kind: KindInvite}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := service.Put(namespace, &Room{Kind: KindChat}); err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                       6,
		{Before: time.Now().Add(-24 * time.Hour)}: 1,
		{IDs: []uint64{old.ID}}:                  1,
		{Kinds: []Kind{KindChat}}:                2,
		{Kinds: []Kind{KindInvite}}:              4,
		{Limit: 2}:                               2,
	}

	for opts, want := range cases {
		rs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(rs); have != want {
			t.Errorf("%+v: have %v, want %v", *opts, have, want)
		}
	}
}
