package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/fretmastery/internal/shared"
)

func TestUser(t *testing.T) {
	t.Run("NewUser normalises input", func(t *testing.T) {
		u := NewUser("  alice ", " Alice@Example.COM ", "hash")
		if u.Username != "alice" {
			t.Errorf("expected username alice, got %q", u.Username)
		}
		if u.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %q", u.Email)
		}
		if err := u.Validate(); err != nil {
			t.Errorf("expected valid user, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name string
			user *User
		}{
			{name: "short username", user: NewUser("al", "al@example.com", "hash")},
			{name: "bad email", user: NewUser("alice", "not-an-email", "hash")},
			{name: "missing hash", user: NewUser("alice", "alice@example.com", "")},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.user.Validate(); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
			})
		}
	})
}

func TestExercise(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e := NewExercise(" C Major Scale ", "", "C3-C4", "scales", 1)
		if err := e.Validate(); err != nil {
			t.Fatalf("expected valid exercise, got %v", err)
		}
		if e.Title != "C Major Scale" {
			t.Errorf("expected trimmed title, got %q", e.Title)
		}

		r, err := e.Range()
		if err != nil {
			t.Fatalf("Range() failed: %v", err)
		}
		if r.String() != "C3-C4" {
			t.Errorf("expected C3-C4, got %s", r)
		}
	})

	t.Run("blank title", func(t *testing.T) {
		e := NewExercise("   ", "", "C3-C4", "", 1)
		err := e.Validate()

		var verr *shared.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Fields[0].Field != "title" {
			t.Errorf("expected title field, got %s", verr.Fields[0].Field)
		}
	})

	t.Run("malformed note range", func(t *testing.T) {
		e := NewExercise("Broken", "", "X9-E4", "", 1)
		err := e.Validate()

		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected the parse error to be kept as the cause, got %v", err)
		}
	})
}

func TestPracticeSession(t *testing.T) {
	date := time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

	t.Run("rating bounds", func(t *testing.T) {
		for rating := MinRating; rating <= MaxRating; rating++ {
			if err := NewPracticeSession(1, 1, rating, "", date).Validate(); err != nil {
				t.Errorf("rating %d should be valid: %v", rating, err)
			}
		}

		for _, rating := range []int{0, 6, -1} {
			err := NewPracticeSession(1, 1, rating, "", date).Validate()
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("rating %d: expected ErrValidation, got %v", rating, err)
			}
			if err != nil && !strings.Contains(err.Error(), "difficulty_rating") {
				t.Errorf("rating %d: expected message to name difficulty_rating, got %v", rating, err)
			}
		}
	})

	t.Run("date is truncated", func(t *testing.T) {
		s := NewPracticeSession(1, 1, 3, "  legato ", date)
		if s.Date() != "2024-03-09" {
			t.Errorf("expected 2024-03-09, got %s", s.Date())
		}
		if s.PracticeDate.Hour() != 0 {
			t.Errorf("expected midnight, got %v", s.PracticeDate)
		}
		if s.SessionNotes != "legato" {
			t.Errorf("expected trimmed notes, got %q", s.SessionNotes)
		}
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Format(DateLayout) != "2024-01-31" {
		t.Errorf("unexpected date %v", d)
	}

	today, err := ParseDate("")
	if err != nil {
		t.Fatalf("ParseDate(\"\") failed: %v", err)
	}
	if today.Format(DateLayout) != time.Now().Format(DateLayout) {
		t.Errorf("expected today, got %v", today)
	}

	if _, err := ParseDate("31/01/2024"); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPrincipal(t *testing.T) {
	var anon Principal
	if anon.Authenticated() {
		t.Error("zero principal should be anonymous")
	}

	p := PrincipalFor(&User{ID: 7, Username: "admin", IsAdmin: true})
	if !p.Authenticated() || !p.IsAdmin || p.UserID != 7 {
		t.Errorf("unexpected principal %+v", p)
	}
}
