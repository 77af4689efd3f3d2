package caldate

import (
	"testing"
	"time"
)

func TestOf_DropsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := time.Date(2024, 1, 2, 3, 30, 0, 0, loc) // 2024-01-01 20:30 UTC
	got := Of(in)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("Of = %v, want %v", got, want)
	}
}

func TestAddDaysAndDaysBetween(t *testing.T) {
	start, err := Parse("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	due := AddDays(start, 14)
	if Format(due) != "2024-01-15" {
		t.Fatalf("due = %s", Format(due))
	}
	if n := DaysBetween(start, due); n != 14 {
		t.Fatalf("DaysBetween = %d, want 14", n)
	}
	if n := DaysBetween(due, start); n != -14 {
		t.Fatalf("DaysBetween reversed = %d, want -14", n)
	}
	// leap year
	if Format(AddDays(mustParse(t, "2024-02-28"), 1)) != "2024-02-29" {
		t.Fatal("leap day not handled")
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{"", "2024/01/01", "2024-13-01", "01-01-2024"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("Parse(%q) should fail", s)
		}
	}
}

func TestFormatPtr(t *testing.T) {
	if FormatPtr(nil) != "" {
		t.Fatal("nil should format empty")
	}
	d := mustParse(t, "2024-01-20")
	if FormatPtr(&d) != "2024-01-20" {
		t.Fatal("FormatPtr mismatch")
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
