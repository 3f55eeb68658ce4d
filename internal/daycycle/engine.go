package daycycle

import (
	"time"

	"cloud.google.com/go/civil"
)

// Engine bundles the configuration the day-cycle functions need, so callers
// hand it around instead of repeating the template and phase table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	template WeeklyTemplate
	phases   PhaseTable
}

func NewEngine(template WeeklyTemplate, phases PhaseTable) (*Engine, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		template: template,
		phases:   phases,
	}, nil
}

func (e *Engine) Template() WeeklyTemplate {
	return e.template
}

func (e *Engine) Phases() PhaseTable {
	return e.phases
}

func (e *Engine) ResolveDayPlan(program Program, target civil.Date) DayPlan {
	return ResolveDayPlan(program, e.template, target)
}

func (e *Engine) DayView(program Program, record CompletionRecord, target civil.Date, now time.Time) DayView {
	return BuildDayView(program, e.template, record, target, now)
}

func (e *Engine) DayCompleted(program Program, record CompletionRecord, date civil.Date) bool {
	return DayCompleted(record, program, e.template, date)
}

func (e *Engine) CompletedDays(program Program, record CompletionRecord) DateSet {
	return RecomputeCompletedDays(record, program, e.template)
}

// Tracker starts incremental completed-day tracking from record.
func (e *Engine) Tracker(program Program, record CompletionRecord) *CompletedDaysTracker {
	return NewCompletedDaysTracker(program, e.template, record)
}

func (e *Engine) Stats(program Program, record CompletionRecord, today civil.Date) Stats {
	return ComputeProgramStats(program, e.CompletedDays(program, record), today, e.phases)
}
