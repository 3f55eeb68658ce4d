package daycycle

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Weekday is the name of a cycle day. The cycle always starts at Monday,
// regardless of which calendar weekday the program started on.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays holds the fixed cycle ordering, program day 1 maps to index 0.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (w Weekday) String() string {
	return string(w)
}

func (w Weekday) IsValid() bool {
	for _, wd := range Weekdays {
		if wd == w {
			return true
		}
	}
	return false
}

// Index returns the position of the weekday in the cycle, or -1.
func (w Weekday) Index() int {
	for i, wd := range Weekdays {
		if wd == w {
			return i
		}
	}
	return -1
}

type Activity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Time     civil.Time `json:"time"`
	Duration string     `json:"duration"`
	Details  string     `json:"details"`
	Link     string     `json:"link"`
}

// MinutesOfDay returns the scheduled time as minutes since midnight.
func (a Activity) MinutesOfDay() int {
	return a.Time.Hour*60 + a.Time.Minute
}

// WeeklyTemplate maps a cycle day to its ordered list of activities.
// It is configuration: build it once and never mutate it afterwards.
type WeeklyTemplate map[Weekday][]Activity

// ActivitiesFor returns the activities of the given cycle day, or nil.
func (t WeeklyTemplate) ActivitiesFor(day Weekday) []Activity {
	if t == nil {
		return nil
	}
	return t[day]
}

// ActivityIDs returns the ids required on the given cycle day.
func (t WeeklyTemplate) ActivityIDs(day Weekday) []string {
	activities := t.ActivitiesFor(day)
	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}
	return ids
}

// Validate checks that every key is a known weekday and that activity ids
// are unique within each day.
func (t WeeklyTemplate) Validate() error {
	for day, activities := range t {
		if !day.IsValid() {
			return fmt.Errorf("unknown weekday in template: %q", day)
		}
		seen := make(map[string]bool, len(activities))
		for _, a := range activities {
			if a.ID == "" {
				return fmt.Errorf("%s: activity with empty id", day)
			}
			if seen[a.ID] {
				return fmt.Errorf("%s: duplicate activity id %q", day, a.ID)
			}
			seen[a.ID] = true
		}
	}
	return nil
}

const (
	DateLayout        = "2006-01-02"
	clockLayout       = "15:04"
	clockLayoutSecond = "15:04:05"
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseClock parses a wall-clock time given as HH:MM or HH:MM:SS.
func ParseClock(s string) (civil.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		var errSec error
		t, errSec = time.Parse(clockLayoutSecond, s)
		if errSec != nil {
			return civil.Time{}, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	return civil.Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func clock(hour, minute int) civil.Time {
	return civil.Time{Hour: hour, Minute: minute}
}
