// Package availability builds the bookable time-slot labels for a day and
// marks the ones already taken.
package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const clockLayout = "15:04"

// Interval is a half-open [Start, End) window on an arbitrary reference day.
type Interval struct {
	Start time.Time
	End   time.Time
}

type Slot struct {
	Time     string
	IsBooked bool
}

type Schedule struct {
	labels []string
}

// ParseWindows reads a comma separated list such as
// "09:00-12:00,14:00-18:00".
func ParseWindows(raw string) ([]Interval, error) {
	var windows []Interval
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("slot window %q: expected HH:MM-HH:MM", part)
		}
		start, err := time.Parse(clockLayout, strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("slot window %q: %w", part, err)
		}
		end, err := time.Parse(clockLayout, strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("slot window %q: %w", part, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("slot window %q: end must be after start", part)
		}
		windows = append(windows, Interval{Start: start, End: end})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no slot windows configured")
	}
	return windows, nil
}

// NewSchedule cuts each window into step-sized slots. A trailing remainder
// shorter than step is dropped. Windows must not overlap.
func NewSchedule(windows []Interval, step time.Duration) (*Schedule, error) {
	if step <= 0 {
		return nil, fmt.Errorf("slot step must be positive")
	}
	sorted := append([]Interval(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for i, w := range sorted {
		if overlapsAny(w.Start, w.End, sorted[:i]) {
			return nil, fmt.Errorf("slot window %s overlaps another window", label(w.Start, w.End))
		}
	}

	var labels []string
	for _, w := range sorted {
		for t := w.Start; !t.Add(step).After(w.End); t = t.Add(step) {
			labels = append(labels, label(t, t.Add(step)))
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("slot windows are shorter than the %s step", step)
	}
	return &Schedule{labels: labels}, nil
}

// Labels returns a copy of the slot labels in time order.
func (s *Schedule) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Annotate flags every slot whose label appears in booked. Booked values
// that match no slot are ignored.
func (s *Schedule) Annotate(booked []string) []Slot {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	slots := make([]Slot, len(s.labels))
	for i, l := range s.labels {
		_, isBooked := taken[l]
		slots[i] = Slot{Time: l, IsBooked: isBooked}
	}
	return slots
}

func label(start, end time.Time) string {
	return start.Format(clockLayout) + "-" + end.Format(clockLayout)
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
