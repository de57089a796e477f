package schedule

import (
	"reflect"
	"testing"
)

func TestAllowedSlots(t *testing.T) {
	slots := AllowedSlots()
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots, got %d", len(slots))
	}
	if slots[0] != "08:00:00" || slots[8] != "16:00:00" {
		t.Fatalf("unexpected bounds: %q .. %q", slots[0], slots[8])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots not ascending at %d: %q <= %q", i, slots[i], slots[i-1])
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"09:00", "09:00:00", true},
		{"16:00", "16:00:00", true},
		{"09:00:00", "09:00:00", true},
		{"17:00:00", "17:00:00", true}, // normalizes, but not bookable
		{"9:00", "", false},            // zero-padded only
		{"09:0", "", false},
		{"09-00", "", false},
		{"09:00:0", "", false},
		{"", "", false},
		{"morning", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeTime(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeTime(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsBookable(t *testing.T) {
	tests := []struct {
		normalized string
		want       bool
	}{
		{"08:00:00", true},
		{"12:00:00", true},
		{"16:00:00", true},
		{"17:00:00", false},
		{"07:00:00", false},
		{"08:30:00", false},
	}
	for _, tt := range tests {
		if got := IsBookable(tt.normalized); got != tt.want {
			t.Errorf("IsBookable(%q) = %v, want %v", tt.normalized, got, tt.want)
		}
	}
}

func TestAvailableTimes(t *testing.T) {
	got := AvailableTimes([]string{"09:00:00", "13:00:00"})
	want := []string{"08:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AvailableTimes = %v, want %v", got, want)
	}
}

func TestAvailableTimesEmptyAndFull(t *testing.T) {
	if got := AvailableTimes(nil); len(got) != 9 {
		t.Fatalf("no bookings should leave the full catalog, got %v", got)
	}
	if got := AvailableTimes(AllowedSlots()); len(got) != 0 {
		t.Fatalf("fully booked day should leave nothing, got %v", got)
	}
}

func TestDisplayTime(t *testing.T) {
	if got := DisplayTime("08:00:00"); got != "08:00" {
		t.Fatalf("DisplayTime = %q", got)
	}
	if got := DisplayTime("bad"); got != "bad" {
		t.Fatalf("short input should pass through, got %q", got)
	}
}
