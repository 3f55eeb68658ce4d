package program

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/daycycle"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=program_test

// Store persists programs together with their completion records and day
// plans. Every call is scoped to an owner, a program of another owner is
// reported as ErrProgramNotFound.
type Store interface {
	ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error)
	Program(ctx context.Context, owner auth.Owner, id int) (*Program, error)
	// StartProgram supersedes the active program, if any, by marking it reset.
	StartProgram(ctx context.Context, owner auth.Owner, newProgram NewProgram) (*Program, error)
	UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error)
	// ResetProgram marks the active program reset and drops its completion record.
	ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error)

	CompletionRecord(ctx context.Context, owner auth.Owner, programID int) (daycycle.CompletionRecord, error)
	// ToggleActivity flips the completion flag atomically and returns the new value.
	ToggleActivity(ctx context.Context, owner auth.Owner, programID int, date civil.Date, activityID string) (bool, error)
	// SetActivityNotes stores free text for an activity on a date, empty notes remove it.
	SetActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date, activityID, notes string) error
	// ActivityNotes returns the notes of a date keyed by activity id.
	ActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (map[string]string, error)

	SaveDayPlan(ctx context.Context, owner auth.Owner, plan DayPlanRecord) (*DayPlanRecord, error)
	DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error)
	DayPlans(ctx context.Context, owner auth.Owner, programID int) ([]DayPlanRecord, error)
}

var (
	_ Store = (*PsqlStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*CachedStore)(nil)
	_ Store = (*OwnerRouter)(nil)
)

// OwnerRouter sends registered users to one store and guests to another.
type OwnerRouter struct {
	users  Store
	guests Store
}

func NewOwnerRouter(users, guests Store) *OwnerRouter {
	return &OwnerRouter{
		users:  users,
		guests: guests,
	}
}

func (r *OwnerRouter) storeFor(owner auth.Owner) (Store, error) {
	switch {
	case owner.IsUser() && r.users != nil:
		return r.users, nil
	case owner.IsGuest() && r.guests != nil:
		return r.guests, nil
	}
	return nil, ErrUnsupportedOwner
}

func (r *OwnerRouter) ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.ActiveProgram(ctx, owner)
}

func (r *OwnerRouter) Program(ctx context.Context, owner auth.Owner, id int) (*Program, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.Program(ctx, owner, id)
}

func (r *OwnerRouter) StartProgram(ctx context.Context, owner auth.Owner, newProgram NewProgram) (*Program, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.StartProgram(ctx, owner, newProgram)
}

func (r *OwnerRouter) UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.UpdateProgram(ctx, owner, id, update)
}

func (r *OwnerRouter) ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.ResetProgram(ctx, owner)
}

func (r *OwnerRouter) CompletionRecord(ctx context.Context, owner auth.Owner, programID int) (daycycle.CompletionRecord, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.CompletionRecord(ctx, owner, programID)
}

func (r *OwnerRouter) ToggleActivity(ctx context.Context, owner auth.Owner, programID int, date civil.Date, activityID string) (bool, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return false, err
	}
	return store.ToggleActivity(ctx, owner, programID, date, activityID)
}

func (r *OwnerRouter) SaveDayPlan(ctx context.Context, owner auth.Owner, plan DayPlanRecord) (*DayPlanRecord, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.SaveDayPlan(ctx, owner, plan)
}

func (r *OwnerRouter) DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.DayPlan(ctx, owner, programID, date)
}

func (r *OwnerRouter) DayPlans(ctx context.Context, owner auth.Owner, programID int) ([]DayPlanRecord, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.DayPlans(ctx, owner, programID)
}

func (r *OwnerRouter) SetActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date, activityID, notes string) error {
	store, err := r.storeFor(owner)
	if err != nil {
		return err
	}
	return store.SetActivityNotes(ctx, owner, programID, date, activityID, notes)
}

func (r *OwnerRouter) ActivityNotes(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (map[string]string, error) {
	store, err := r.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.ActivityNotes(ctx, owner, programID, date)
}
