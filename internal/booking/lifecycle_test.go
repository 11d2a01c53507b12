package booking

import (
	"testing"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
)

func TestApproveGate(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	row := func(status Status, start, end time.Time) *Booking {
		return &Booking{ID: "b1", SlotID: "s1", Status: status, StartTime: start, EndTime: end}
	}

	// 已过审/终态的预约不能再审批
	for _, s := range []Status{StatusConfirmed, StatusOccupied, StatusCompleted, StatusCancelled, StatusDeclined} {
		if err := approveGate(row(s, h(0), h(2)), nil); err != ErrInvalidTransition {
			t.Errorf("approve %s: got %v, want ErrInvalidTransition", s, err)
		}
	}

	// 没有占窗预约时放行
	if err := approveGate(row(StatusRequested, h(0), h(2)), nil); err != nil {
		t.Fatalf("approve with no occupying bookings: %v", err)
	}

	// 两个互相重叠的 requested：第一个放行后占窗，
	// 第二个审批时必须撞上冲突而不是跟着变 confirmed
	first := row(StatusRequested, h(0), h(2))
	if err := approveGate(first, nil); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	first.Status = StatusConfirmed

	second := &Booking{ID: "b2", SlotID: "s1", Status: StatusRequested, StartTime: h(1), EndTime: h(3)}
	if err := approveGate(second, []Booking{*first}); err != ErrSlotConflict {
		t.Fatalf("second overlapping approve: got %v, want ErrSlotConflict", err)
	}

	// 首尾相接（半开区间）不算冲突
	adjacent := &Booking{ID: "b3", SlotID: "s1", Status: StatusRequested, StartTime: h(2), EndTime: h(4)}
	if err := approveGate(adjacent, []Booking{*first}); err != nil {
		t.Fatalf("adjacent approve rejected: %v", err)
	}

	// 占窗列表里出现自身（已被本事务锁定的行）要跳过
	self := row(StatusRequested, h(0), h(2))
	if err := approveGate(self, []Booking{*self}); err != nil {
		t.Fatalf("approve with self in occupying list: %v", err)
	}
}

func TestCheckInGate(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	row := func(status Status) *Booking {
		return &Booking{ID: "b1", UserID: "u1", Status: status, StartTime: start, EndTime: end}
	}

	cases := []struct {
		name    string
		booking *Booking
		userID  string
		now     time.Time
		want    error
	}{
		{"ok at start", row(StatusConfirmed), "u1", start, nil},
		{"ok mid window", row(StatusConfirmed), "u1", start.Add(time.Hour), nil},
		{"ok exactly at end", row(StatusConfirmed), "u1", end, nil}, // 闭区间
		{"token of another user", row(StatusConfirmed), "u2", start, auth.ErrTokenInvalid},
		{"too early", row(StatusConfirmed), "u1", start.Add(-time.Minute), ErrCheckInTooEarly},
		{"after end", row(StatusConfirmed), "u1", end.Add(time.Second), ErrCheckInExpired},
		{"already occupied", row(StatusOccupied), "u1", start, ErrAlreadyOccupied},
		{"not approved yet", row(StatusRequested), "u1", start, ErrInvalidTransition},
		{"cancelled", row(StatusCancelled), "u1", start, ErrInvalidTransition},
		{"declined", row(StatusDeclined), "u1", start, ErrInvalidTransition},
		{"completed", row(StatusCompleted), "u1", start, ErrInvalidTransition},
	}
	for _, c := range cases {
		if got := checkInGate(c.booking, c.userID, c.now); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
