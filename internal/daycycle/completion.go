package daycycle

import (
	"sort"

	"cloud.google.com/go/civil"
)

// CompletionRecord maps a local calendar date to the completion flags of the
// activities ticked on that date. Ids that are not part of the date's
// template may be present; they never count towards completion.
type CompletionRecord map[civil.Date]map[string]bool

func (r CompletionRecord) IsCompleted(date civil.Date, activityID string) bool {
	return r[date][activityID]
}

// Clone returns a deep copy of the record.
func (r CompletionRecord) Clone() CompletionRecord {
	clone := make(CompletionRecord, len(r))
	for date, day := range r {
		dayClone := make(map[string]bool, len(day))
		for id, completed := range day {
			dayClone[id] = completed
		}
		clone[date] = dayClone
	}
	return clone
}

// Equal compares two records treating a missing entry as not completed.
func (r CompletionRecord) Equal(other CompletionRecord) bool {
	return r.containedIn(other) && other.containedIn(r)
}

func (r CompletionRecord) containedIn(other CompletionRecord) bool {
	for date, day := range r {
		for id, completed := range day {
			if completed != other.IsCompleted(date, id) {
				return false
			}
		}
	}
	return true
}

// Toggle returns a copy of record with the flag of (date, activityID)
// flipped. The input record is left untouched, so anyone holding it keeps
// seeing the pre-toggle state.
func Toggle(record CompletionRecord, date civil.Date, activityID string) CompletionRecord {
	updated := record.Clone()
	day, ok := updated[date]
	if !ok {
		day = make(map[string]bool)
		updated[date] = day
	}
	day[activityID] = !day[activityID]
	return updated
}

// DayCompleted reports whether every activity the template requires on date
// is ticked. Days without required activities are never complete.
func DayCompleted(record CompletionRecord, program Program, template WeeklyTemplate, date civil.Date) bool {
	plan := ResolveDayPlan(program, template, date)
	if len(plan.Activities) == 0 {
		return false
	}
	completed := 0
	for _, a := range plan.Activities {
		if record.IsCompleted(date, a.ID) {
			completed++
		}
	}
	return completed == len(plan.Activities)
}

// RecomputeCompletedDays derives the set of fully completed dates from
// scratch. It is the reference every incremental path must agree with.
func RecomputeCompletedDays(record CompletionRecord, program Program, template WeeklyTemplate) DateSet {
	days := DateSet{}
	if !program.HasStartDate() {
		return days
	}
	for date := range record {
		if DayCompleted(record, program, template, date) {
			days.Add(date)
		}
	}
	return days
}

// DateSet is a set of calendar dates.
type DateSet map[civil.Date]struct{}

func NewDateSet(dates ...civil.Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d civil.Date) {
	s[d] = struct{}{}
}

func (s DateSet) Remove(d civil.Date) {
	delete(s, d)
}

func (s DateSet) Has(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

func (s DateSet) Len() int {
	return len(s)
}

// Sorted returns the dates in ascending order.
func (s DateSet) Sorted() []civil.Date {
	dates := make([]civil.Date, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// CompletedDaysTracker keeps the completed days set up to date one toggle at
// a time, instead of recomputing it over the whole record.
type CompletedDaysTracker struct {
	program  Program
	template WeeklyTemplate
	days     DateSet
}

func NewCompletedDaysTracker(program Program, template WeeklyTemplate, record CompletionRecord) *CompletedDaysTracker {
	return &CompletedDaysTracker{
		program:  program,
		template: template,
		days:     RecomputeCompletedDays(record, program, template),
	}
}

// Update re-evaluates date against record, which must be the record after
// the change that touched date. It returns whether date is now complete.
func (t *CompletedDaysTracker) Update(record CompletionRecord, date civil.Date) bool {
	if DayCompleted(record, t.program, t.template, date) {
		t.days.Add(date)
		return true
	}
	t.days.Remove(date)
	return false
}

// Days returns a copy of the tracked set.
func (t *CompletedDaysTracker) Days() DateSet {
	days := make(DateSet, len(t.days))
	for d := range t.days {
		days.Add(d)
	}
	return days
}
