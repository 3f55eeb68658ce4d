package program

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/daycycle"
	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// dates and times travel as text, and are parsed into civil values
const programColumns = `id, start_date::text, day_start_time::text, current_week, current_phase, status, created_at, updated_at`

const dayPlanColumns = `dp.id, dp.program_id, dp.plan_date::text, dp.program_day, dp.program_week, dp.day_of_cycle, dp.generated_at`

// PsqlStore keeps programs of registered users in postgres.
type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrProgramNotFound) && !errors.Is(err, ErrDayPlanNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func userID(owner auth.Owner) (int, error) {
	if !owner.IsUser() {
		return 0, ErrUnsupportedOwner
	}
	return owner.UserID, nil
}

func scanProgram(row pgx.Row) (*Program, error) {
	var (
		p                  Program
		startDate, dayTime string
		status             string
	)
	if err := row.Scan(
		&p.ID, &startDate, &dayTime, &p.CurrentWeek, &p.CurrentPhase, &status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	var err error
	if p.StartDate, err = daycycle.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("program %d start date: %w", p.ID, err)
	}
	if p.DayStartTime, err = daycycle.ParseClock(dayTime); err != nil {
		return nil, fmt.Errorf("program %d day start time: %w", p.ID, err)
	}
	p.Status = Status(status)
	return &p, nil
}

func (s *PsqlStore) ActiveProgram(ctx context.Context, owner auth.Owner) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.active")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	return scanProgram(s.db.QueryRow(ctx, `
		SELECT `+programColumns+`
		FROM programs
		WHERE user_id = $1 AND status <> 'reset'
		ORDER BY created_at DESC, id DESC
		LIMIT 1;
	`, uid))
}

func (s *PsqlStore) Program(ctx context.Context, owner auth.Owner, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	return scanProgram(s.db.QueryRow(ctx, `
		SELECT `+programColumns+`
		FROM programs
		WHERE id = $1 AND user_id = $2;
	`, id, uid))
}

func (s *PsqlStore) StartProgram(ctx context.Context, owner auth.Owner, newProgram NewProgram) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.start")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE programs
		SET status = 'reset', updated_at = NOW()
		WHERE user_id = $1 AND status <> 'reset';
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("supersede active program: %w", err)
	}
	span.SetAttributes(attribute.Int64("programs.superseded", tag.RowsAffected()))

	program, err := scanProgram(tx.QueryRow(ctx, `
		INSERT INTO programs (user_id, start_date, day_start_time, current_week, current_phase, status)
		VALUES ($1, $2::date, $3::time, 1, $4, 'active')
		RETURNING `+programColumns+`;
	`,
		uid,
		newProgram.StartDate.String(),
		newProgram.DayStartTime.String(),
		newProgram.CurrentPhase,
	))
	if err != nil {
		// the session outlived its user
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnsupportedOwner
		}
		return nil, fmt.Errorf("insert program: %w", err)
	}

	return program, nil
}

func (s *PsqlStore) UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	var status *string
	if update.Status != nil {
		st := string(*update.Status)
		status = &st
	}

	return scanProgram(s.db.QueryRow(ctx, `
		UPDATE programs
		SET current_week = COALESCE($3, current_week),
			current_phase = COALESCE($4, current_phase),
			status = COALESCE($5, status),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status <> 'reset'
		RETURNING `+programColumns+`;
	`, id, uid, update.CurrentWeek, update.CurrentPhase, status))
}

func (s *PsqlStore) ResetProgram(ctx context.Context, owner auth.Owner) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.reset")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// every non-reset row goes, so a stray second one cannot keep its progress
	rows, err := tx.Query(ctx, `
		UPDATE programs
		SET status = 'reset', updated_at = NOW()
		WHERE user_id = $1 AND status <> 'reset'
		RETURNING `+programColumns+`;
	`, uid)
	if err != nil {
		return nil, err
	}
	var (
		program *Program
		ids     []int
	)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, p.ID)
		if program == nil || p.CreatedAt.After(program.CreatedAt) {
			program = p
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if program == nil {
		err = ErrProgramNotFound
		return nil, err
	}
	span.SetAttributes(attribute.Int("programs.reset", len(ids)))

	if _, err = tx.Exec(ctx, `DELETE FROM activity_progress WHERE program_id = ANY($1);`, ids); err != nil {
		return nil, fmt.Errorf("delete progress of programs %v: %w", ids, err)
	}

	return program, nil
}

func (s *PsqlStore) CompletionRecord(ctx context.Context, owner auth.Owner, programID int) (_ daycycle.CompletionRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.completion")
	defer func() { endSpan(span, err) }()

	// distinguishes "no progress yet" from "not your program"
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT plan_date::text, activity_id, completed
		FROM activity_progress
		WHERE program_id = $1;
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	record := daycycle.CompletionRecord{}
	for rows.Next() {
		var (
			planDate   string
			activityID string
			completed  bool
		)
		if err := rows.Scan(&planDate, &activityID, &completed); err != nil {
			return nil, err
		}
		date, err := daycycle.ParseDate(planDate)
		if err != nil {
			return nil, err
		}
		if record[date] == nil {
			record[date] = map[string]bool{}
		}
		record[date][activityID] = completed
	}

	return record, rows.Err()
}

func (s *PsqlStore) ToggleActivity(
	ctx context.Context,
	owner auth.Owner,
	programID int,
	date civil.Date,
	activityID string,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.toggle")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return false, err
	}
	span.SetAttributes(
		attribute.Int("program.id", programID),
		attribute.String("activity.id", activityID),
	)

	// single statement: concurrent toggles of the same key serialize on the row
	var completed bool
	err = s.db.QueryRow(ctx, `
		INSERT INTO activity_progress (program_id, plan_date, activity_id, completed, completed_at)
		SELECT $1, $3::date, $4, TRUE, NOW()
		WHERE EXISTS (SELECT 1 FROM programs WHERE id = $1 AND user_id = $2)
		ON CONFLICT (program_id, plan_date, activity_id) DO UPDATE
		SET completed = NOT activity_progress.completed,
			completed_at = CASE WHEN activity_progress.completed THEN NULL ELSE NOW() END
		RETURNING completed;
	`, programID, uid, date.String(), activityID).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrProgramNotFound
		}
		return false, err
	}

	return completed, nil
}

// SetActivityNotes keeps notes on the progress row, creating an uncompleted
// one when the activity was never toggled.
func (s *PsqlStore) SetActivityNotes(
	ctx context.Context,
	owner auth.Owner,
	programID int,
	date civil.Date,
	activityID string,
	notes string,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.notes.set")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return err
	}

	var stored *string
	err = s.db.QueryRow(ctx, `
		INSERT INTO activity_progress (program_id, plan_date, activity_id, completed, notes)
		SELECT $1, $3::date, $4, FALSE, NULLIF($5, '')
		WHERE EXISTS (SELECT 1 FROM programs WHERE id = $1 AND user_id = $2)
		ON CONFLICT (program_id, plan_date, activity_id) DO UPDATE
		SET notes = EXCLUDED.notes
		RETURNING notes;
	`, programID, uid, date.String(), activityID, notes).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProgramNotFound
		}
		return err
	}

	return nil
}

func (s *PsqlStore) ActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (_ map[string]string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.notes.get")
	defer func() { endSpan(span, err) }()

	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT activity_id, notes
		FROM activity_progress
		WHERE program_id = $1 AND plan_date = $2::date AND notes IS NOT NULL;
	`, programID, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := map[string]string{}
	for rows.Next() {
		var activityID, text string
		if err := rows.Scan(&activityID, &text); err != nil {
			return nil, err
		}
		notes[activityID] = text
	}

	return notes, rows.Err()
}

func scanDayPlan(row pgx.Row) (*DayPlanRecord, error) {
	var (
		plan     DayPlanRecord
		planDate string
		weekday  string
	)
	if err := row.Scan(
		&plan.ID, &plan.ProgramID, &planDate, &plan.ProgramDay, &plan.ProgramWeek, &weekday, &plan.GeneratedAt,
	); err != nil {
		return nil, err
	}
	date, err := daycycle.ParseDate(planDate)
	if err != nil {
		return nil, err
	}
	plan.PlanDate = date
	plan.DayOfCycle = daycycle.Weekday(weekday)
	return &plan, nil
}

func (s *PsqlStore) SaveDayPlan(ctx context.Context, owner auth.Owner, plan DayPlanRecord) (_ *DayPlanRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.dayplans.save")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	saved, err := scanDayPlan(s.db.QueryRow(ctx, `
		WITH dp AS (
			INSERT INTO day_plans (program_id, plan_date, program_day, program_week, day_of_cycle)
			SELECT $1, $3::date, $4, $5, $6
			WHERE EXISTS (SELECT 1 FROM programs WHERE id = $1 AND user_id = $2)
			ON CONFLICT (program_id, plan_date) DO UPDATE
			SET program_day = EXCLUDED.program_day,
				program_week = EXCLUDED.program_week,
				day_of_cycle = EXCLUDED.day_of_cycle,
				generated_at = NOW()
			RETURNING *
		)
		SELECT `+dayPlanColumns+` FROM dp;
	`,
		plan.ProgramID, uid, plan.PlanDate.String(), plan.ProgramDay, plan.ProgramWeek, string(plan.DayOfCycle),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	return saved, nil
}

func (s *PsqlStore) DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (_ *DayPlanRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.dayplans.get")
	defer func() { endSpan(span, err) }()

	uid, err := userID(owner)
	if err != nil {
		return nil, err
	}

	plan, err := scanDayPlan(s.db.QueryRow(ctx, `
		SELECT `+dayPlanColumns+`
		FROM day_plans dp
		JOIN programs p ON p.id = dp.program_id
		WHERE dp.program_id = $1 AND p.user_id = $2 AND dp.plan_date = $3::date;
	`, programID, uid, date.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDayPlanNotFound
		}
		return nil, err
	}

	return plan, nil
}

func (s *PsqlStore) DayPlans(ctx context.Context, owner auth.Owner, programID int) (_ []DayPlanRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.dayplans.list")
	defer func() { endSpan(span, err) }()

	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+dayPlanColumns+`
		FROM day_plans dp
		WHERE dp.program_id = $1
		ORDER BY dp.plan_date ASC;
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]DayPlanRecord, 0)
	for rows.Next() {
		plan, err := scanDayPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}

	return plans, rows.Err()
}
