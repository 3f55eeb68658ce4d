package program

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/daycycle"
)

var (
	ErrProgramNotFound  = errors.New("program not found")
	ErrDayPlanNotFound  = errors.New("day plan not found")
	ErrUnknownActivity  = errors.New("unknown activity")
	ErrInvalidStatus    = errors.New("invalid program status")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnsupportedOwner = errors.New("owner kind not supported by store")
)

// DefaultDayStartTime is used when a program is started without one.
var DefaultDayStartTime = civil.Time{Hour: 5}

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusReset     Status = "reset"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusReset:
		return true
	}
	return false
}

// Program is a stored program instance. An owner has at most one program
// whose status is not reset, and that one is the owner's active program.
type Program struct {
	ID           int        `json:"id"`
	StartDate    civil.Date `json:"start_date"`
	DayStartTime civil.Time `json:"day_start_time"`
	CurrentWeek  int        `json:"current_week"`
	CurrentPhase string     `json:"current_phase"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *Program) Engine() daycycle.Program {
	if p == nil {
		return daycycle.Program{}
	}
	return daycycle.Program{
		StartDate:    p.StartDate,
		DayStartTime: p.DayStartTime,
	}
}

type NewProgram struct {
	StartDate    civil.Date
	DayStartTime civil.Time
	CurrentPhase string
}

// Update holds the user-editable program fields, nil fields stay unchanged.
type Update struct {
	CurrentWeek  *int    `json:"current_week"`
	CurrentPhase *string `json:"current_phase"`
	Status       *Status `json:"status"`
}

func (u Update) Validate() error {
	if u.CurrentWeek == nil && u.CurrentPhase == nil && u.Status == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}
	if u.CurrentWeek != nil && (*u.CurrentWeek < 1 || *u.CurrentWeek > daycycle.ProgramWeeks+1) {
		return fmt.Errorf("%w: current week out of range", ErrInvalidRequest)
	}
	if u.Status != nil {
		// resetting goes through its own endpoint, since it also drops progress
		if !u.Status.IsValid() || *u.Status == StatusReset {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
		}
	}
	return nil
}

func (u Update) apply(p *Program) {
	if u.CurrentWeek != nil {
		p.CurrentWeek = *u.CurrentWeek
	}
	if u.CurrentPhase != nil {
		p.CurrentPhase = *u.CurrentPhase
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}

// DayPlanRecord is a persisted snapshot of a resolved day plan.
type DayPlanRecord struct {
	ID          int              `json:"id"`
	ProgramID   int              `json:"program_id"`
	PlanDate    civil.Date       `json:"plan_date"`
	ProgramDay  int              `json:"program_day"`
	ProgramWeek int              `json:"program_week"`
	DayOfCycle  daycycle.Weekday `json:"day_of_cycle"`
	GeneratedAt time.Time        `json:"generated_at"`
}

func newDayPlanRecord(programID int, plan daycycle.DayPlan) DayPlanRecord {
	return DayPlanRecord{
		ProgramID:   programID,
		PlanDate:    plan.Date,
		ProgramDay:  plan.ProgramDay,
		ProgramWeek: plan.Week(),
		DayOfCycle:  plan.Weekday,
	}
}
