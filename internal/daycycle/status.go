package daycycle

import (
	"time"

	"cloud.google.com/go/civil"
)

// Status of a single activity on a given date. Derived on demand, never stored.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusMissed    Status = "missed"
	StatusCompleted Status = "completed"
)

// ActivityWindowMinutes is the half-width of the "ongoing" window around an
// activity's scheduled time.
const ActivityWindowMinutes = 30

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled,
		StatusUpcoming,
		StatusOngoing,
		StatusMissed,
		StatusCompleted:
		return true
	default:
		return false
	}
}

// Toggleable reports whether a user may flip the completion of an activity
// in this status: only missed ones can be ticked, only completed ones unticked.
func (s Status) Toggleable() bool {
	return s == StatusMissed || s == StatusCompleted
}

// DeriveActivityStatus returns the status of activity on target, as seen at
// now. now must already be in the viewer's location: its calendar date and
// wall clock are what count as "today" and "current time".
func DeriveActivityStatus(
	activity Activity,
	isCompleted bool,
	isProgramStarted bool,
	target civil.Date,
	now time.Time,
) Status {
	if !isProgramStarted {
		return StatusScheduled
	}
	if isCompleted {
		return StatusCompleted
	}

	today := civil.DateOf(now)
	switch {
	case target.After(today):
		return StatusUpcoming
	case target.Before(today):
		return StatusMissed
	}

	currentMinutes := now.Hour()*60 + now.Minute()
	windowStart := activity.MinutesOfDay() - ActivityWindowMinutes
	windowEnd := activity.MinutesOfDay() + ActivityWindowMinutes

	switch {
	case currentMinutes < windowStart:
		return StatusUpcoming
	case currentMinutes <= windowEnd:
		return StatusOngoing
	default:
		return StatusMissed
	}
}
