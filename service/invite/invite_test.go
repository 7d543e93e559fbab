package invite

import (
	"reflect"
	"testing"
)

func TestListResolution(t *testing.T) {
	l := List{
		{ID: 1, RoomID: 10, UserID: 1, Status: StatusAccepted},
		{ID: 2, RoomID: 10, UserID: 2, Status: StatusWaiting},
		{ID: 3, RoomID: 11, UserID: 3, Status: StatusRejected},
		{ID: 4, RoomID: 10, UserID: 4, Status: StatusAccepted},
	}

	if have, want := l.Accepted(), 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if !l.Pending() {
		t.Errorf("expected list to be pending")
	}

	if l[2:].Pending() {
		t.Errorf("expected resolved list")
	}

	if have, want := l.RoomIDs(), []uint64{10, 11}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(l.ByRoom()[10]), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := l.UserIDs(), []uint64{1, 2, 3, 4}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestQueryOptionsEmpty(t *testing.T) {
	if !(QueryOptions{Limit: 5}).Empty() {
		t.Errorf("limit alone must not constrain")
	}

	if (QueryOptions{RoomIDs: []uint64{1}}).Empty() {
		t.Errorf("room ids must constrain")
	}
}
