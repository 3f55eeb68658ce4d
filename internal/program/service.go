package program

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/daycycle"
	"github.com/2beens/kadjot/internal/telemetry/metrics"
	"github.com/2beens/kadjot/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type StartRequest struct {
	// StartDate defaults to today in the viewer's timezone.
	StartDate    string `json:"start_date"`
	DayStartTime string `json:"day_start_time"`
}

// maxNotesLength is counted in characters.
const maxNotesLength = 2000

type DayResponse struct {
	ProgramID int `json:"program_id"`
	daycycle.DayView
	// activity id to notes, for activities of this date that have any
	Notes map[string]string `json:"notes"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type ActivityNotes struct {
	ProgramID  int        `json:"program_id"`
	Date       civil.Date `json:"date"`
	ActivityID string     `json:"activity_id"`
	Notes      string     `json:"notes"`
}

type ToggleResult struct {
	ProgramID    int        `json:"program_id"`
	Date         civil.Date `json:"date"`
	ActivityID   string     `json:"activity_id"`
	Completed    bool       `json:"completed"`
	DayCompleted bool       `json:"day_completed"`

	// number of completed program days after this toggle
	CompletedDaysCount int              `json:"completed_days_count"`
	Day                daycycle.DayView `json:"day"`
}

type CompletedDaysResponse struct {
	ProgramID     int          `json:"program_id"`
	CompletedDays []civil.Date `json:"completed_days"`
	Count         int          `json:"count"`
}

type StatsResponse struct {
	ProgramID int `json:"program_id"`
	daycycle.Stats
	// counted over template activities of program days up to today
	ActivitiesCompleted int `json:"activities_completed"`
	ActivitiesScheduled int `json:"activities_scheduled"`
}

// Service ties the stores to the day cycle engine. It is safe for
// concurrent use.
type Service struct {
	store           Store
	engine          *daycycle.Engine
	metrics         *metrics.Manager
	knownActivities map[string]bool

	Now func() time.Time
}

func NewService(store Store, engine *daycycle.Engine, metricsManager *metrics.Manager) *Service {
	known := map[string]bool{}
	for _, day := range daycycle.Weekdays {
		for _, id := range engine.Template().ActivityIDs(day) {
			known[id] = true
		}
	}

	return &Service{
		store:           store,
		engine:          engine,
		metrics:         metricsManager,
		knownActivities: known,
		Now:             time.Now,
	}
}

func (s *Service) now(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return s.Now().In(loc)
}

func (s *Service) Today(loc *time.Location) civil.Date {
	return civil.DateOf(s.now(loc))
}

func (s *Service) Template() daycycle.WeeklyTemplate {
	return s.engine.Template()
}

// ActiveProgram returns nil when the owner has no active program.
func (s *Service) ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	p, err := s.store.ActiveProgram(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) StartProgram(ctx context.Context, owner auth.Owner, req StartRequest, loc *time.Location) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.start")
	defer span.End()

	newProgram := NewProgram{
		StartDate:    s.Today(loc),
		DayStartTime: DefaultDayStartTime,
	}
	if phase, ok := s.engine.Phases().PhaseFor(1); ok {
		newProgram.CurrentPhase = phase.Name
	}

	if startDate := strings.TrimSpace(req.StartDate); startDate != "" {
		d, err := daycycle.ParseDate(startDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidRequest)
		}
		newProgram.StartDate = d
	}
	if dayStart := strings.TrimSpace(req.DayStartTime); dayStart != "" {
		t, err := daycycle.ParseClock(dayStart)
		if err != nil {
			return nil, fmt.Errorf("%w: day_start_time must be HH:MM", ErrInvalidRequest)
		}
		newProgram.DayStartTime = t
	}

	p, err := s.store.StartProgram(ctx, owner, newProgram)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterProgramsStarted.WithLabelValues(string(owner.Kind)).Inc()
	}
	log.Debugf("%s started program %d on %s", owner, p.ID, p.StartDate)

	return p, nil
}

func (s *Service) UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateProgram(ctx, owner, id, update)
}

func (s *Service) ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	p, err := s.store.ResetProgram(ctx, owner)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterProgramsReset.WithLabelValues(string(owner.Kind)).Inc()
	}
	log.Debugf("%s reset program %d", owner, p.ID)
	return p, nil
}

// activeProgramAndRecord loads what every read of the active program needs.
func (s *Service) activeProgramAndRecord(ctx context.Context, owner auth.Owner) (*Program, daycycle.CompletionRecord, error) {
	p, err := s.store.ActiveProgram(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	record, err := s.store.CompletionRecord(ctx, owner, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("completion record of program %d: %w", p.ID, err)
	}
	return p, record, nil
}

func (s *Service) DayView(ctx context.Context, owner auth.Owner, date civil.Date, loc *time.Location) (*DayResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.dayview")
	defer span.End()

	p, record, err := s.activeProgramAndRecord(ctx, owner)
	if err != nil {
		return nil, err
	}

	notes, err := s.store.ActivityNotes(ctx, owner, p.ID, date)
	if err != nil {
		return nil, fmt.Errorf("notes of program %d: %w", p.ID, err)
	}

	return &DayResponse{
		ProgramID: p.ID,
		DayView:   s.engine.DayView(p.Engine(), record, date, s.now(loc)),
		Notes:     notes,
	}, nil
}

// SetActivityNotes attaches free text to an activity of the active program on
// date. Blank notes remove the existing ones.
func (s *Service) SetActivityNotes(
	ctx context.Context,
	owner auth.Owner,
	date civil.Date,
	activityID string,
	req NotesRequest,
) (*ActivityNotes, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.notes")
	defer span.End()

	if !s.knownActivities[activityID] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activityID)
	}
	notes := strings.TrimSpace(req.Notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes longer than %d characters", ErrInvalidRequest, maxNotesLength)
	}

	p, err := s.store.ActiveProgram(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActivityNotes(ctx, owner, p.ID, date, activityID, notes); err != nil {
		return nil, fmt.Errorf("notes of activity %s: %w", activityID, err)
	}

	return &ActivityNotes{
		ProgramID:  p.ID,
		Date:       date,
		ActivityID: activityID,
		Notes:      notes,
	}, nil
}

// ToggleActivity accepts any activity id of the template, also one scheduled
// on another cycle day. Such a tick is stored but never counts toward the day.
func (s *Service) ToggleActivity(
	ctx context.Context,
	owner auth.Owner,
	date civil.Date,
	activityID string,
	loc *time.Location,
) (*ToggleResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.toggle")
	defer span.End()

	if !s.knownActivities[activityID] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activityID)
	}

	p, err := s.store.ActiveProgram(ctx, owner)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("program.id", p.ID),
		attribute.String("activity.id", activityID),
		attribute.String("date", date.String()),
	)

	completed, err := s.store.ToggleActivity(ctx, owner, p.ID, date, activityID)
	if err != nil {
		return nil, fmt.Errorf("toggle activity %s: %w", activityID, err)
	}

	record, err := s.store.CompletionRecord(ctx, owner, p.ID)
	if err != nil {
		return nil, fmt.Errorf("completion record of program %d: %w", p.ID, err)
	}

	engineProgram := p.Engine()
	// toggling back yields the record as it was before this toggle
	tracker := s.engine.Tracker(engineProgram, daycycle.Toggle(record, date, activityID))
	wasCompleted := tracker.Days().Has(date)
	dayCompleted := tracker.Update(record, date)

	if s.metrics != nil {
		s.metrics.CounterActivityToggles.WithLabelValues(string(owner.Kind), strconv.FormatBool(completed)).Inc()
		if dayCompleted && !wasCompleted {
			s.metrics.CounterDaysCompleted.WithLabelValues(string(owner.Kind)).Inc()
		}
	}

	return &ToggleResult{
		ProgramID:    p.ID,
		Date:         date,
		ActivityID:   activityID,
		Completed:    completed,
		DayCompleted: dayCompleted,

		CompletedDaysCount: tracker.Days().Len(),
		Day:                s.engine.DayView(engineProgram, record, date, s.now(loc)),
	}, nil
}

func (s *Service) CompletedDays(ctx context.Context, owner auth.Owner) (*CompletedDaysResponse, error) {
	p, record, err := s.activeProgramAndRecord(ctx, owner)
	if err != nil {
		return nil, err
	}

	days := s.engine.CompletedDays(p.Engine(), record).Sorted()
	return &CompletedDaysResponse{
		ProgramID:     p.ID,
		CompletedDays: days,
		Count:         len(days),
	}, nil
}

// Stats of an owner without an active program are those of a program that
// never started.
func (s *Service) Stats(ctx context.Context, owner auth.Owner, loc *time.Location) (*StatsResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.stats")
	defer span.End()

	today := s.Today(loc)
	p, record, err := s.activeProgramAndRecord(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			return &StatsResponse{
				Stats: s.engine.Stats(daycycle.Program{}, nil, today),
			}, nil
		}
		return nil, err
	}

	resp := &StatsResponse{
		ProgramID: p.ID,
		Stats:     s.engine.Stats(p.Engine(), record, today),
	}

	lastDay := min(resp.CurrentDay, daycycle.ProgramLengthDays)
	for day := 1; day <= lastDay; day++ {
		plan := s.engine.ResolveDayPlan(p.Engine(), p.StartDate.AddDays(day-1))
		resp.ActivitiesScheduled += len(plan.Activities)
		for _, a := range plan.Activities {
			if record.IsCompleted(plan.Date, a.ID) {
				resp.ActivitiesCompleted++
			}
		}
	}

	return resp, nil
}

func (s *Service) GenerateDayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.programs.dayplans.generate")
	defer span.End()

	p, err := s.store.Program(ctx, owner, programID)
	if err != nil {
		return nil, err
	}

	plan := s.engine.ResolveDayPlan(p.Engine(), date)
	if plan.ProgramDay < 1 {
		return nil, fmt.Errorf("%w: %s is before the program start %s", ErrInvalidRequest, date, p.StartDate)
	}

	return s.store.SaveDayPlan(ctx, owner, newDayPlanRecord(p.ID, plan))
}

func (s *Service) DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error) {
	return s.store.DayPlan(ctx, owner, programID, date)
}

func (s *Service) DayPlans(ctx context.Context, owner auth.Owner, programID int) ([]DayPlanRecord, error) {
	return s.store.DayPlans(ctx, owner, programID)
}
