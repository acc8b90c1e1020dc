// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Week is the nominal anchor period. Real weeks are an hour shorter or longer
// across a DST change; Weekly measures them from the calendar instead.
const Week = 7 * 24 * time.Hour

// Weekly is a day-of-week and wall-clock time in a fixed zone.
type Weekly struct {
	Day    time.Weekday
	Hour   int
	Minute int
	Loc    *time.Location
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekly parses "friday", "20:00" and an IANA zone name.
func ParseWeekly(day, clock, zone string) (Weekly, error) {
	day = strings.ToLower(strings.TrimSpace(day))
	wd, ok := weekdays[day]
	if !ok && len(day) >= 3 {
		// "fri", "thur" and so on
		for name, d := range weekdays {
			if strings.HasPrefix(name, day) {
				wd, ok = d, true
				break
			}
		}
	}
	if !ok {
		return Weekly{}, fmt.Errorf("invalid anchor day %q", day)
	}

	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return Weekly{}, fmt.Errorf("invalid anchor time %q: %w", clock, err)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Weekly{}, fmt.Errorf("invalid anchor zone %q: %w", zone, err)
	}

	return Weekly{Day: wd, Hour: t.Hour(), Minute: t.Minute(), Loc: loc}, nil
}

func (w Weekly) String() string {
	return fmt.Sprintf("%s %02d:%02d %s", w.Day, w.Hour, w.Minute, w.Loc)
}

func (w Weekly) location() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// occurrence returns the anchor in the week containing now's local date,
// shifted by weeks.
func (w Weekly) occurrence(now time.Time, weeks int) time.Time {
	local := now.In(w.location())
	days := (int(w.Day) - int(local.Weekday()) + 7) % 7
	return time.Date(local.Year(), local.Month(), local.Day()+days+7*weeks, w.Hour, w.Minute, 0, 0, w.location())
}

// Next is the first anchor at or after now.
func (w Weekly) Next(now time.Time) time.Time {
	next := w.occurrence(now, 0)
	if next.Before(now) {
		next = w.occurrence(now, 1)
	}
	return next
}

// Previous is the last anchor at or before now.
func (w Weekly) Previous(now time.Time) time.Time {
	if occ := w.occurrence(now, 0); !occ.After(now) {
		return occ
	}
	return w.occurrence(now, -1)
}

// Wait is how long until the next anchor, in [0, week) where week is the
// calendar length of the current anchor week.
func (w Weekly) Wait(now time.Time) time.Duration {
	prev := w.Previous(now)
	following := w.occurrence(prev, 1)
	return TimeUntilNextAnchor(now, prev, following.Sub(prev))
}

// TimeUntilNextAnchor returns week - ((now - anchor) mod week), folded into
// [0, week). A now that falls exactly on an anchor yields 0.
func TimeUntilNextAnchor(now, anchor time.Time, week time.Duration) time.Duration {
	if week <= 0 {
		return 0
	}
	elapsed := now.Sub(anchor) % week
	if elapsed < 0 {
		elapsed += week
	}
	if elapsed == 0 {
		return 0
	}
	return week - elapsed
}
