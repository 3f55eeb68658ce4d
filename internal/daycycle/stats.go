package daycycle

import (
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

type Phase struct {
	Name  string `json:"name"`
	Weeks string `json:"weeks"`
	Color string `json:"color"`
}

// PhaseStart ties a phase to the first program week it covers.
type PhaseStart struct {
	Week  int
	Phase Phase
}

// PhaseTable lists phases by their starting week. Each phase lasts until the
// next one starts.
type PhaseTable []PhaseStart

func DefaultPhases() PhaseTable {
	return PhaseTable{
		{Week: 1, Phase: Phase{Name: "Foundation Phase", Weeks: "1-2", Color: "#84cc16"}},
		{Week: 3, Phase: Phase{Name: "Building Phase", Weeks: "3-6", Color: "#eab308"}},
		{Week: 7, Phase: Phase{Name: "Strength Phase", Weeks: "7-10", Color: "#d97706"}},
		{Week: 11, Phase: Phase{Name: "Peak Performance", Weeks: "11-12", Color: "#15803d"}},
	}
}

// PhaseFor picks the phase with the largest starting week <= week.
func (t PhaseTable) PhaseFor(week int) (Phase, bool) {
	if week < 1 || len(t) == 0 {
		return Phase{}, false
	}

	sorted := make(PhaseTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Week < sorted[j].Week
	})

	for i := len(sorted) - 1; i >= 0; i-- {
		if week >= sorted[i].Week {
			return sorted[i].Phase, true
		}
	}
	// earlier than the first listed phase
	return sorted[0].Phase, true
}

type Stats struct {
	IsStarted       bool   `json:"is_started"`
	DaysInProgram   int    `json:"days_in_program"`
	DaysCompleted   int    `json:"days_completed"`
	CurrentDay      int    `json:"current_day"`
	CurrentWeek     int    `json:"current_week"`
	CurrentPhase    *Phase `json:"current_phase"`
	ProgressPercent int    `json:"progress_percent"`
}

// ComputeProgramStats summarises the program as of today.
func ComputeProgramStats(program Program, completedDays DateSet, today civil.Date, phases PhaseTable) Stats {
	stats := Stats{
		IsStarted:       program.IsStarted(today),
		DaysInProgram:   ProgramLengthDays,
		DaysCompleted:   completedDays.Len(),
		ProgressPercent: ProgressPercent(completedDays.Len()),
	}
	if !stats.IsStarted {
		return stats
	}

	stats.CurrentDay = ProgramDay(program.StartDate, today)
	stats.CurrentWeek = WeekOfDay(stats.CurrentDay)
	if phase, ok := phases.PhaseFor(stats.CurrentWeek); ok {
		stats.CurrentPhase = &phase
	}
	return stats
}

// ProgressPercent is the share of the 84 program days fully completed,
// rounded and capped at 100.
func ProgressPercent(completedDays int) int {
	if completedDays <= 0 {
		return 0
	}
	percent := int(math.Round(float64(completedDays) / ProgramLengthDays * 100))
	return min(percent, 100)
}

// CompletionPercent is round(completed/total*100), 0 for an empty day.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

type ActivityView struct {
	Activity
	Status     Status `json:"status"`
	Completed  bool   `json:"completed"`
	Toggleable bool   `json:"toggleable"`
}

// DayView is a resolved day plan with per-activity statuses.
type DayView struct {
	Date              civil.Date     `json:"date"`
	ProgramDay        int            `json:"program_day"`
	ProgramWeek       int            `json:"program_week"`
	Weekday           Weekday        `json:"weekday"`
	Activities        []ActivityView `json:"activities"`
	CompletedCount    int            `json:"completed_count"`
	TotalCount        int            `json:"total_count"`
	CompletionPercent int            `json:"completion_percent"`
	DayCompleted      bool           `json:"day_completed"`
}

// BuildDayView resolves target and derives every activity status at now.
// Only activities of the resolved day are counted.
func BuildDayView(
	program Program,
	template WeeklyTemplate,
	record CompletionRecord,
	target civil.Date,
	now time.Time,
) DayView {
	plan := ResolveDayPlan(program, template, target)
	started := program.IsStarted(civil.DateOf(now))

	view := DayView{
		Date:        plan.Date,
		ProgramDay:  plan.ProgramDay,
		ProgramWeek: plan.Week(),
		Weekday:     plan.Weekday,
		Activities:  make([]ActivityView, 0, len(plan.Activities)),
		TotalCount:  len(plan.Activities),
	}
	for _, a := range plan.Activities {
		completed := record.IsCompleted(target, a.ID)
		status := DeriveActivityStatus(a, completed, started, target, now)
		if completed {
			view.CompletedCount++
		}
		view.Activities = append(view.Activities, ActivityView{
			Activity:   a,
			Status:     status,
			Completed:  completed,
			Toggleable: status.Toggleable(),
		})
	}
	view.CompletionPercent = CompletionPercent(view.CompletedCount, view.TotalCount)
	view.DayCompleted = view.TotalCount > 0 && view.CompletedCount == view.TotalCount
	return view
}
