// Package schedule holds the pure scheduling rules: the fixed slot catalog,
// time normalization, availability computation and request validation. It has
// no database dependency so the booking invariants can be tested in isolation.
package schedule

import "fmt"

const (
	firstSlotHour = 8
	lastSlotHour  = 16
)

// AllowedSlots returns the nine bookable hourly marks from 08:00:00 to
// 16:00:00 in ascending order. The catalog is regenerated on each call, never
// persisted.
func AllowedSlots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00:00", h))
	}
	return slots
}

// NormalizeTime canonicalizes a client-supplied time string to HH:MM:SS.
// "HH:MM" gains a ":00" seconds part; "HH:MM:SS" passes through. Anything
// else, including non-zero-padded input like "9:00", is rejected. Callers
// must still check the result against the catalog with IsBookable: a string
// such as "17:00:00" normalizes fine but is not a valid slot.
func NormalizeTime(input string) (string, bool) {
	switch len(input) {
	case 5: // HH:MM
		if !clockDigits(input) {
			return "", false
		}
		return input + ":00", true
	case 8: // HH:MM:SS
		if !clockDigits(input[:5]) || input[5] != ':' || !digit(input[6]) || !digit(input[7]) {
			return "", false
		}
		return input, true
	default:
		return "", false
	}
}

// IsBookable reports whether a normalized time is a member of the catalog.
func IsBookable(normalized string) bool {
	for _, s := range AllowedSlots() {
		if s == normalized {
			return true
		}
	}
	return false
}

// DisplayTime truncates a TIME value to the HH:MM form used in responses.
func DisplayTime(t string) string {
	if len(t) < 5 {
		return t
	}
	return t[:5]
}

// AvailableTimes subtracts the booked times (HH:MM:SS, non-Canceled sessions)
// from the catalog and returns the remainder in ascending order, truncated to
// HH:MM display form.
func AvailableTimes(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	free := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for _, s := range AllowedSlots() {
		if _, ok := taken[s]; !ok {
			free = append(free, DisplayTime(s))
		}
	}
	return free
}

func clockDigits(s string) bool {
	// expects exactly "HH:MM"
	return digit(s[0]) && digit(s[1]) && s[2] == ':' && digit(s[3]) && digit(s[4])
}

func digit(b byte) bool { return b >= '0' && b <= '9' }
