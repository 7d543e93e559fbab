package block

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList(from, to uint64) List {
	bs := List{}

	for i := 0; i < 7; i++ {
		bs = append(bs, &Block{
			Enabled: true,
			FromID:  from,
			ToID:    uint64(rand.Int63()),
		})
	}

	for i := 0; i < 5; i++ {
		bs = append(bs, &Block{
			Enabled: false,
			FromID:  from,
			ToID:    uint64(rand.Int63()),
		})
	}

	for i := 0; i < 9; i++ {
		bs = append(bs, &Block{
			Enabled: true,
			FromID:  uint64(rand.Int63()),
			ToID:    to,
		})
	}

	return bs
}

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		from      = uint64(rand.Int63())
		to        = uint64(rand.Int63())
		disabled  = false
	)

	for _, b := range testList(from, to) {
		if _, err := service.Put(namespace, b); err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                  21,
		{Enabled: &disabled}:                5,
		{FromIDs: []uint64{from}}:           12,
		{FromIDs: []uint64{from}, Limit: 3}: 12,
		{ToIDs: []uint64{to}}:               9,
	}

	for opts, want := range cases {
		have, err := service.Count(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("%+v: have %v, want %v", *opts, have, want)
		}
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		b         = &Block{
			Enabled: true,
			FromID:  uint64(rand.Int63()),
			ToID:    uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, b)
	if err != nil {
		t.Fatal(err)
	}

	bs, err := service.Query(namespace, QueryOptions{
		FromIDs: []uint64{b.FromID},
		ToIDs:   []uint64{b.ToID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(bs), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := bs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Enabled = false

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	bs, err = service.Query(namespace, QueryOptions{
		FromIDs: []uint64{b.FromID},
		ToIDs:   []uint64{b.ToID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(bs), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := bs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	for _, b := range []*Block{
		{ToID: 1},
		{FromID: 1},
		{FromID: 2, ToID: 2},
	} {
		if _, err := service.Put(namespace, b); !IsInvalidBlock(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidBlock)
		}
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		enabled   = true
		namespace = "service_query"
		service   = p(t, namespace)
		from      = uint64(rand.Int63())
		to        = uint64(rand.Int63())
	)

	for _, b := range testList(from, to) {
		if _, err := service.Put(namespace, b); err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                           21,
		{Enabled: &enabled}:                          16,
		{Enabled: &enabled, FromIDs: []uint64{from}}: 7,
		{Limit: 4}:                                   4,
		{ToIDs: []uint64{to}}:                        9,
	}

	for opts, want := range cases {
		bs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(bs); have != want {
			t.Errorf("%+v: have %v, want %v", *opts, have, want)
		}
	}
}
