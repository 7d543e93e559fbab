package pg

import (
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestClausesToWhere(t *testing.T) {
	if have, want := ClausesToWhere(), ""; have != want {
		t.Errorf("have %q, want %q", have, want)
	}

	var (
		have = ClausesToWhere("a = ?", "b IN (?)")
		want = "WHERE\na = ?\nAND b IN (?)"
	)

	if have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestTimeRoundtrip(t *testing.T) {
	in := time.Date(2024, 3, 1, 12, 30, 15, 123456000, time.UTC)

	out, err := ParseTime(FormatTime(in))
	if err != nil {
		t.Fatal(err)
	}

	if !in.Equal(out) {
		t.Errorf("have %v, want %v", out, in)
	}
}

func TestWrapError(t *testing.T) {
	if err := WrapError(&pq.Error{Code: "42P01"}); !IsRelationNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrRelationNotFound)
	}

	if err := WrapError(&pq.Error{Code: "23505"}); !IsUniqueViolation(err) {
		t.Errorf("have %v, want %v", err, ErrUniqueViolation)
	}

	other := errors.New("boom")

	if have, want := WrapError(other), other; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
