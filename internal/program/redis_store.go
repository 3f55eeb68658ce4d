package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/daycycle"
	"github.com/2beens/kadjot/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	guestProgramIDsKey = "kadjot-guest-program-ids"
	guestDayPlanIDsKey = "kadjot-guest-dayplan-ids"
	guestKeyPrefix     = "kadjot-guest||"

	// progress hash fields are "<date>|<activity id>"
	progressFieldSep = "|"
)

func guestProgramKey(guestID string) string {
	return guestKeyPrefix + guestID + "||program"
}

func guestProgressKey(guestID string, programID int) string {
	return fmt.Sprintf("%s%s||progress||%d", guestKeyPrefix, guestID, programID)
}

func guestDayPlansKey(guestID string, programID int) string {
	return fmt.Sprintf("%s%s||dayplans||%d", guestKeyPrefix, guestID, programID)
}

func guestNotesKey(guestID string, programID int) string {
	return fmt.Sprintf("%s%s||notes||%d", guestKeyPrefix, guestID, programID)
}

// guestProgramKeys lists every key a guest program owns, the program hash first.
func guestProgramKeys(gid string, programID int) []string {
	return []string{
		guestProgramKey(gid),
		guestProgressKey(gid, programID),
		guestNotesKey(gid, programID),
		guestDayPlansKey(gid, programID),
	}
}

func progressField(date civil.Date, activityID string) string {
	return date.String() + progressFieldSep + activityID
}

// RedisStore keeps a guest's single program in redis. Guests have no history,
// starting or resetting a program drops the previous one with its progress.
// Every write, and every active program lookup, refreshes the expiry of
// the guest's keys, so a guest who only reads keeps the program as long as
// the guest id lives.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration

	Now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		Now: time.Now,
	}
}

func guestID(owner auth.Owner) (string, error) {
	if !owner.IsGuest() {
		return "", ErrUnsupportedOwner
	}
	return owner.GuestID, nil
}

func programFields(p *Program) []interface{} {
	return []interface{}{
		"id", strconv.Itoa(p.ID),
		"start_date", p.StartDate.String(),
		"day_start_time", p.DayStartTime.String(),
		"current_week", strconv.Itoa(p.CurrentWeek),
		"current_phase", p.CurrentPhase,
		"status", string(p.Status),
		"created_at", p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func parseProgram(fields map[string]string) (*Program, error) {
	var (
		p   Program
		err error
	)
	if p.ID, err = strconv.Atoi(fields["id"]); err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}
	if p.StartDate, err = daycycle.ParseDate(fields["start_date"]); err != nil {
		return nil, fmt.Errorf("program start date: %w", err)
	}
	if p.DayStartTime, err = daycycle.ParseClock(fields["day_start_time"]); err != nil {
		return nil, fmt.Errorf("program day start time: %w", err)
	}
	if p.CurrentWeek, err = strconv.Atoi(fields["current_week"]); err != nil {
		return nil, fmt.Errorf("program current week: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("program created at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("program updated at: %w", err)
	}
	p.CurrentPhase = fields["current_phase"]
	p.Status = Status(fields["status"])
	return &p, nil
}

func (s *RedisStore) loadProgram(ctx context.Context, guestID string) (*Program, error) {
	fields, err := s.rdb.HGetAll(ctx, guestProgramKey(guestID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrProgramNotFound
	}
	return parseProgram(fields)
}

func (s *RedisStore) saveProgram(ctx context.Context, guestID string, p *Program) error {
	key := guestProgramKey(guestID)
	if err := s.rdb.HSet(ctx, key, programFields(p)...).Err(); err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire program: %w", err)
	}
	return nil
}

func (s *RedisStore) ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.active")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProgram(ctx, gid)
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, gid, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RedisStore) touch(ctx context.Context, gid string, programID int) error {
	for _, key := range guestProgramKeys(gid, programID) {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

func (s *RedisStore) Program(ctx context.Context, owner auth.Owner, id int) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.get")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProgram(ctx, gid)
	if err != nil {
		return nil, err
	}
	if p.ID != id {
		return nil, ErrProgramNotFound
	}
	return p, nil
}

func (s *RedisStore) StartProgram(ctx context.Context, owner auth.Owner, newProgram NewProgram) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.start")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}

	previous, err := s.loadProgram(ctx, gid)
	switch {
	case err == nil:
		if err := s.rdb.Del(ctx, guestProgramKeys(gid, previous.ID)[1:]...).Err(); err != nil {
			return nil, fmt.Errorf("drop previous program %d: %w", previous.ID, err)
		}
		span.SetAttributes(attribute.Int("program.superseded", previous.ID))
	case !errors.Is(err, ErrProgramNotFound):
		return nil, err
	}

	id, err := s.rdb.Incr(ctx, guestProgramIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("next program id: %w", err)
	}

	now := s.Now().UTC()
	p := &Program{
		ID:           int(id),
		StartDate:    newProgram.StartDate,
		DayStartTime: newProgram.DayStartTime,
		CurrentWeek:  1,
		CurrentPhase: newProgram.CurrentPhase,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.saveProgram(ctx, gid, p); err != nil {
		return nil, err
	}

	log.Debugf("guest %s started program %d", gid, p.ID)
	return p, nil
}

func (s *RedisStore) UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.update")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	p, err := s.Program(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	update.apply(p)
	p.UpdatedAt = s.Now().UTC()
	if err := s.saveProgram(ctx, gid, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RedisStore) ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.reset")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProgram(ctx, gid)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Del(ctx, guestProgramKeys(gid, p.ID)...).Err(); err != nil {
		return nil, fmt.Errorf("delete program %d: %w", p.ID, err)
	}

	p.Status = StatusReset
	p.UpdatedAt = s.Now().UTC()
	return p, nil
}

func (s *RedisStore) CompletionRecord(ctx context.Context, owner auth.Owner, programID int) (daycycle.CompletionRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.completion")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	fields, err := s.rdb.HGetAll(ctx, guestProgressKey(gid, programID)).Result()
	if err != nil {
		return nil, err
	}

	record := daycycle.CompletionRecord{}
	for field, value := range fields {
		dateStr, activityID, ok := strings.Cut(field, progressFieldSep)
		if !ok {
			log.Warnf("guest %s: malformed progress field %q", gid, field)
			continue
		}
		date, err := daycycle.ParseDate(dateStr)
		if err != nil {
			log.Warnf("guest %s: malformed progress date %q", gid, field)
			continue
		}
		toggles, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("progress field %q: %w", field, err)
		}
		if record[date] == nil {
			record[date] = map[string]bool{}
		}
		record[date][activityID] = toggles%2 == 1
	}

	return record, nil
}

// ToggleActivity counts toggles per activity, an odd count means completed.
// HINCRBY is atomic, so concurrent toggles are never lost.
func (s *RedisStore) ToggleActivity(
	ctx context.Context,
	owner auth.Owner,
	programID int,
	date civil.Date,
	activityID string,
) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.toggle")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return false, err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return false, err
	}

	key := guestProgressKey(gid, programID)
	toggles, err := s.rdb.HIncrBy(ctx, key, progressField(date, activityID), 1).Result()
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", activityID, err)
	}
	for _, k := range []string{key, guestProgramKey(gid)} {
		if err := s.rdb.Expire(ctx, k, s.ttl).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	return toggles%2 == 1, nil
}

func (s *RedisStore) SetActivityNotes(
	ctx context.Context,
	owner auth.Owner,
	programID int,
	date civil.Date,
	activityID string,
	notes string,
) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.notes.set")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return err
	}

	key := guestNotesKey(gid, programID)
	field := progressField(date, activityID)
	if notes == "" {
		if err := s.rdb.HDel(ctx, key, field).Err(); err != nil {
			return fmt.Errorf("delete notes of %s: %w", activityID, err)
		}
		return nil
	}
	if err := s.rdb.HSet(ctx, key, field, notes).Err(); err != nil {
		return fmt.Errorf("save notes of %s: %w", activityID, err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire notes: %w", err)
	}
	return nil
}

func (s *RedisStore) ActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (map[string]string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.notes.get")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	fields, err := s.rdb.HGetAll(ctx, guestNotesKey(gid, programID)).Result()
	if err != nil {
		return nil, err
	}

	prefix := date.String() + progressFieldSep
	notes := map[string]string{}
	for field, text := range fields {
		if activityID, ok := strings.CutPrefix(field, prefix); ok {
			notes[activityID] = text
		}
	}
	return notes, nil
}

func (s *RedisStore) SaveDayPlan(ctx context.Context, owner auth.Owner, plan DayPlanRecord) (*DayPlanRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.dayplans.save")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}

	existing, err := s.DayPlan(ctx, owner, plan.ProgramID, plan.PlanDate)
	switch {
	case err == nil:
		plan.ID = existing.ID
	case errors.Is(err, ErrDayPlanNotFound):
		id, err := s.rdb.Incr(ctx, guestDayPlanIDsKey).Result()
		if err != nil {
			return nil, fmt.Errorf("next day plan id: %w", err)
		}
		plan.ID = int(id)
	default:
		return nil, err
	}

	plan.GeneratedAt = s.Now().UTC()
	planJson, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	key := guestDayPlansKey(gid, plan.ProgramID)
	if err := s.rdb.HSet(ctx, key, plan.PlanDate.String(), string(planJson)).Err(); err != nil {
		return nil, fmt.Errorf("save day plan: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("expire day plans: %w", err)
	}

	return &plan, nil
}

func (s *RedisStore) DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.dayplans.get")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	planJson, err := s.rdb.HGet(ctx, guestDayPlansKey(gid, programID), date.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDayPlanNotFound
		}
		return nil, err
	}

	var plan DayPlanRecord
	if err := json.Unmarshal([]byte(planJson), &plan); err != nil {
		return nil, fmt.Errorf("unmarshal day plan %s: %w", date, err)
	}
	return &plan, nil
}

func (s *RedisStore) DayPlans(ctx context.Context, owner auth.Owner, programID int) ([]DayPlanRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.programs.dayplans.list")
	defer span.End()

	gid, err := guestID(owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.Program(ctx, owner, programID); err != nil {
		return nil, err
	}

	plansJson, err := s.rdb.HGetAll(ctx, guestDayPlansKey(gid, programID)).Result()
	if err != nil {
		return nil, err
	}

	plans := make([]DayPlanRecord, 0, len(plansJson))
	for date, planJson := range plansJson {
		var plan DayPlanRecord
		if err := json.Unmarshal([]byte(planJson), &plan); err != nil {
			return nil, fmt.Errorf("unmarshal day plan %s: %w", date, err)
		}
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].PlanDate.Before(plans[j].PlanDate)
	})

	return plans, nil
}
