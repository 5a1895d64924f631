package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDay(t *testing.T) {
	// 2025-06-02 is a Monday.
	for offset := 0; offset < 14; offset++ {
		day := date(2025, time.June, 2).AddDate(0, 0, offset)
		want := day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
		if got := IsBusinessDay(day); got != want {
			t.Errorf("IsBusinessDay(%s %s) = %v, want %v", day.Format("2006-01-02"), day.Weekday(), got, want)
		}
	}
}

func TestBaseHourSlots(t *testing.T) {
	want := []int{8, 9, 10, 11, 14, 15, 16, 17}
	got := BaseHourSlots()

	if len(got) != len(want) {
		t.Fatalf("Expected %d slots, got %d", len(want), len(got))
	}
	for i, h := range want {
		if got[i] != h {
			t.Errorf("Slot %d: expected %d, got %d", i, h, got[i])
		}
	}

	// Mutating the returned slice must not affect the catalogue.
	got[0] = 0
	if BaseHourSlots()[0] != 8 {
		t.Error("BaseHourSlots() returned a shared slice")
	}
}

func TestIsBaseHour(t *testing.T) {
	for _, h := range BaseHourSlots() {
		if !IsBaseHour(h) {
			t.Errorf("Expected %d to be a base hour", h)
		}
	}
	for _, h := range []int{0, 7, 12, 13, 18, 23} {
		if IsBaseHour(h) {
			t.Errorf("Expected %d not to be a base hour", h)
		}
	}
}

func TestAvailableSlots(t *testing.T) {
	monday := date(2025, time.June, 2)

	t.Run("all free on an empty business day", func(t *testing.T) {
		free := AvailableSlots(monday, nil)
		if len(free) != 8 {
			t.Fatalf("Expected 8 free slots, got %d", len(free))
		}
	})

	t.Run("booked hours are removed", func(t *testing.T) {
		free := AvailableSlots(monday, []int{9, 14})
		if len(free) != 6 {
			t.Fatalf("Expected 6 free slots, got %d", len(free))
		}
		for _, h := range free {
			if h == 9 || h == 14 {
				t.Errorf("Hour %d should not be free", h)
			}
		}
	})

	t.Run("weekend has no slots", func(t *testing.T) {
		saturday := date(2025, time.June, 7)
		if free := AvailableSlots(saturday, nil); free != nil {
			t.Errorf("Expected no slots on Saturday, got %v", free)
		}
	})

	t.Run("fully booked day is empty", func(t *testing.T) {
		if free := AvailableSlots(monday, BaseHourSlots()); len(free) != 0 {
			t.Errorf("Expected no free slots, got %v", free)
		}
	})
}

func TestSlotLabel(t *testing.T) {
	if got := SlotLabel(8); got != "08:00" {
		t.Errorf("SlotLabel(8) = %q, want %q", got, "08:00")
	}
	if got := SlotLabel(14); got != "14:00" {
		t.Errorf("SlotLabel(14) = %q, want %q", got, "14:00")
	}
}

func TestBusinessDaysBetween(t *testing.T) {
	// 2025-07-01 (Tue) .. 2025-07-05 (Sat): Tue through Fri, Saturday dropped.
	days := BusinessDaysBetween(date(2025, time.July, 1), date(2025, time.July, 5))
	if len(days) != 4 {
		t.Fatalf("Expected 4 business days, got %d: %v", len(days), days)
	}
	for _, d := range days {
		if !IsBusinessDay(d) {
			t.Errorf("%s is not a business day", d.Format("2006-01-02"))
		}
	}

	if got := BusinessDaysBetween(date(2025, time.July, 5), date(2025, time.July, 1)); len(got) != 0 {
		t.Errorf("Expected empty result for inverted range, got %v", got)
	}
}

func TestDaysInclusive(t *testing.T) {
	if got := DaysInclusive(date(2025, time.March, 10), date(2025, time.March, 10)); got != 1 {
		t.Errorf("Same-day period should count 1 day, got %d", got)
	}
	if got := DaysInclusive(date(2025, time.March, 10), date(2025, time.March, 19)); got != 10 {
		t.Errorf("Expected 10 days, got %d", got)
	}
	if got := DaysInclusive(date(2025, time.March, 19), date(2025, time.March, 10)); got != 0 {
		t.Errorf("Inverted range should count 0 days, got %d", got)
	}
}

func TestAt(t *testing.T) {
	day := date(2025, time.June, 2)
	at := At(day, 9)
	if at.Hour() != 9 || !SameDay(at, day) {
		t.Errorf("At() = %v, want 09:00 on %s", at, day.Format("2006-01-02"))
	}
}
