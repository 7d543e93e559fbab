package block

import (
	"reflect"
	"testing"
)

func TestListOtherIDs(t *testing.T) {
	var (
		origin = uint64(1)
		bs     = List{
			{FromID: origin, ToID: 2},
			{FromID: 3, ToID: origin},
			{FromID: origin, ToID: 4},
		}
	)

	if have, want := bs.OtherIDs(origin), []uint64{2, 3, 4}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := bs.FromIDs(), []uint64{1, 3, 1}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := bs.ToIDs(), []uint64{2, 1, 4}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}
