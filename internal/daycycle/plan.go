package daycycle

import (
	"cloud.google.com/go/civil"
)

const (
	CycleLength       = 7
	ProgramWeeks      = 12
	ProgramLengthDays = ProgramWeeks * CycleLength
)

// Program is the part of a user's program the engine needs.
// A zero StartDate means the program was never started.
type Program struct {
	StartDate    civil.Date `json:"start_date"`
	DayStartTime civil.Time `json:"day_start_time"`
}

func (p Program) HasStartDate() bool {
	return !p.StartDate.IsZero()
}

// IsStarted reports whether today is on or after the program start date.
func (p Program) IsStarted(today civil.Date) bool {
	return p.HasStartDate() && !today.Before(p.StartDate)
}

// DayPlan is the resolved template for a single calendar date.
// Weekday is empty when the date falls before the program start.
type DayPlan struct {
	Date       civil.Date `json:"date"`
	ProgramDay int        `json:"program_day"`
	Weekday    Weekday    `json:"weekday"`
	Activities []Activity `json:"activities"`
}

// Week returns the 1-indexed program week of the plan, 0 before the start.
func (p DayPlan) Week() int {
	return WeekOfDay(p.ProgramDay)
}

// ProgramDay returns the 1-indexed program day of target. Day 1 is the start
// date itself; dates before the start yield 0 or negative values. The
// difference is taken on calendar dates, so DST shifts cannot affect it.
func ProgramDay(start, target civil.Date) int {
	return target.DaysSince(start) + 1
}

// CycleWeekday maps a program day onto the 7-day cycle. Program days before
// day 1 are not part of any cycle and report ok=false.
func CycleWeekday(programDay int) (_ Weekday, ok bool) {
	if programDay < 1 {
		return "", false
	}
	return Weekdays[(programDay-1)%CycleLength], true
}

// WeekOfDay returns the program week a program day belongs to, 0 before day 1.
func WeekOfDay(programDay int) int {
	if programDay < 1 {
		return 0
	}
	return (programDay-1)/CycleLength + 1
}

// ResolveDayPlan works out which cycle day and activities apply to target.
func ResolveDayPlan(program Program, template WeeklyTemplate, target civil.Date) DayPlan {
	plan := DayPlan{
		Date:       target,
		Activities: []Activity{},
	}
	if !program.HasStartDate() {
		return plan
	}

	plan.ProgramDay = ProgramDay(program.StartDate, target)
	weekday, ok := CycleWeekday(plan.ProgramDay)
	if !ok {
		return plan
	}

	plan.Weekday = weekday
	if activities := template.ActivitiesFor(weekday); len(activities) > 0 {
		plan.Activities = append(plan.Activities, activities...)
	}
	return plan
}
