package booking

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusRequested, StatusConfirmed, true},
		{StatusRequested, StatusDeclined, true},
		{StatusRequested, StatusCancelled, true},
		{StatusRequested, StatusOccupied, false},
		{StatusConfirmed, StatusOccupied, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusOccupied, StatusCompleted, true},
		{StatusOccupied, StatusCancelled, true},
		{StatusOccupied, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDeclined, StatusConfirmed, false},
		{StatusConfirmed, StatusConfirmed, false}, // 自迁移非法
		{Status("bogus"), StatusConfirmed, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	b := &Booking{Status: StatusRequested}
	if err := ApplyTransition(b, StatusConfirmed, at); err != nil {
		t.Fatalf("requested -> confirmed: %v", err)
	}
	if b.Status != StatusConfirmed || b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(at) {
		t.Fatalf("confirmed_at not set: %+v", b)
	}

	if err := ApplyTransition(b, StatusOccupied, at); err != nil {
		t.Fatalf("confirmed -> occupied: %v", err)
	}
	if b.CheckedInAt == nil {
		t.Fatal("checked_in_at not set")
	}

	if err := ApplyTransition(b, StatusCompleted, at); err != nil {
		t.Fatalf("occupied -> completed: %v", err)
	}
	if b.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}

	// 终态再迁移必须失败，且状态不被破坏
	if err := ApplyTransition(b, StatusCancelled, at); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if b.Status != StatusCompleted {
		t.Fatalf("status mutated on rejected transition: %s", b.Status)
	}
}

func TestApplyTransitionDeclineSetsCancelledAt(t *testing.T) {
	at := time.Now().UTC()
	b := &Booking{Status: StatusRequested}
	if err := ApplyTransition(b, StatusDeclined, at); err != nil {
		t.Fatalf("requested -> declined: %v", err)
	}
	if b.CancelledAt == nil {
		t.Fatal("cancelled_at not set on decline")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusDeclined} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusRequested, StatusConfirmed, StatusOccupied} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
