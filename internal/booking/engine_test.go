package booking

import (
	"testing"
	"time"
)

func TestWindowsOverlap(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", h(0), h(2), h(0), h(2), true},
		{"partial overlap", h(0), h(2), h(1), h(3), true},
		{"contained", h(0), h(4), h(1), h(2), true},
		{"back to back", h(0), h(2), h(2), h(4), false}, // 半开区间，首尾相接不冲突
		{"disjoint", h(0), h(1), h(2), h(3), false},
		{"reverse back to back", h(2), h(4), h(0), h(2), false},
	}
	for _, c := range cases {
		if got := WindowsOverlap(c.s1, c.e1, c.s2, c.e2); got != c.want {
			t.Errorf("%s: WindowsOverlap = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestReserveInputValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := func() ReserveInput {
		return ReserveInput{
			UserID:    "u1",
			SlotID:    "s1",
			StartTime: now.Add(time.Hour),
			EndTime:   now.Add(2 * time.Hour),
			VehicleID: "abc-123",
		}
	}

	in := valid()
	if err := in.Validate(now); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if in.VehicleID != "ABC-123" {
		t.Fatalf("vehicle id not normalized: %q", in.VehicleID)
	}

	in = valid()
	in.VehicleID = "   "
	if err := in.Validate(now); err != ErrMissingVehicleID {
		t.Fatalf("blank vehicle id: got %v, want ErrMissingVehicleID", err)
	}

	in = valid()
	in.EndTime = in.StartTime
	if err := in.Validate(now); err != ErrInvalidWindow {
		t.Fatalf("zero-length window: got %v, want ErrInvalidWindow", err)
	}

	in = valid()
	in.StartTime, in.EndTime = in.EndTime, in.StartTime
	if err := in.Validate(now); err != ErrInvalidWindow {
		t.Fatalf("reversed window: got %v, want ErrInvalidWindow", err)
	}

	// 时钟容差之内的过去时间放行
	in = valid()
	in.StartTime = now.Add(-3 * time.Minute)
	in.EndTime = now.Add(time.Hour)
	if err := in.Validate(now); err != nil {
		t.Fatalf("start within skew tolerance rejected: %v", err)
	}

	// 容差之外拒绝
	in = valid()
	in.StartTime = now.Add(-10 * time.Minute)
	in.EndTime = now.Add(time.Hour)
	if err := in.Validate(now); err != ErrInvalidWindow {
		t.Fatalf("past-dated start: got %v, want ErrInvalidWindow", err)
	}

	in = valid()
	in.SlotID = ""
	if err := in.Validate(now); err != ErrInvalidWindow {
		t.Fatalf("missing slot id: got %v, want error", err)
	}
}
