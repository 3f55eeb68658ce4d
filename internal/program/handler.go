package program

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/daycycle"
	"github.com/2beens/kadjot/internal/middleware"
	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=program_test

type programService interface {
	Template() daycycle.WeeklyTemplate
	Today(loc *time.Location) civil.Date
	ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error)
	StartProgram(ctx context.Context, owner auth.Owner, req StartRequest, loc *time.Location) (*Program, error)
	UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error)
	ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error)
	DayView(ctx context.Context, owner auth.Owner, date civil.Date, loc *time.Location) (*DayResponse, error)
	ToggleActivity(ctx context.Context, owner auth.Owner, date civil.Date, activityID string, loc *time.Location) (*ToggleResult, error)
	SetActivityNotes(ctx context.Context, owner auth.Owner, date civil.Date, activityID string, req NotesRequest) (*ActivityNotes, error)
	CompletedDays(ctx context.Context, owner auth.Owner) (*CompletedDaysResponse, error)
	Stats(ctx context.Context, owner auth.Owner, loc *time.Location) (*StatsResponse, error)
	GenerateDayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error)
	DayPlan(ctx context.Context, owner auth.Owner, programID int, date civil.Date) (*DayPlanRecord, error)
	DayPlans(ctx context.Context, owner auth.Owner, programID int) ([]DayPlanRecord, error)
}

type Handler struct {
	service    programService
	defaultLoc *time.Location
}

func NewHandler(service programService, defaultLoc *time.Location) *Handler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Handler{
		service:    service,
		defaultLoc: defaultLoc,
	}
}

func (h *Handler) SetupRoutes(mainRouter *mux.Router) {
	activitiesRouter := mainRouter.PathPrefix("/api/activities").Subrouter()
	activitiesRouter.HandleFunc("", h.HandleActivities).Methods("GET", "OPTIONS").Name("activities")
	activitiesRouter.HandleFunc("/day/{day}", h.HandleActivitiesForDay).Methods("GET", "OPTIONS").Name("activities-day")

	programsRouter := mainRouter.PathPrefix("/api/programs").Subrouter()
	programsRouter.HandleFunc("", h.HandleStart).Methods("POST", "OPTIONS").Name("programs-start")
	programsRouter.HandleFunc("/active", h.HandleActive).Methods("GET", "OPTIONS").Name("programs-active")
	programsRouter.HandleFunc("/active", h.HandleReset).Methods("DELETE").Name("programs-reset")
	programsRouter.HandleFunc("/active/days/{date}", h.HandleDay).Methods("GET", "OPTIONS").Name("programs-day")
	programsRouter.HandleFunc("/active/days/{date}/activities/{activityId}/toggle", h.HandleToggle).Methods("POST", "OPTIONS").Name("programs-toggle")
	programsRouter.HandleFunc("/active/days/{date}/activities/{activityId}/notes", h.HandleNotes).Methods("PUT", "OPTIONS").Name("programs-notes")
	programsRouter.HandleFunc("/active/completed-days", h.HandleCompletedDays).Methods("GET", "OPTIONS").Name("programs-completed-days")
	programsRouter.HandleFunc("/active/stats", h.HandleStats).Methods("GET", "OPTIONS").Name("programs-stats")
	programsRouter.HandleFunc("/{id:[0-9]+}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("programs-update")
	programsRouter.HandleFunc("/{programId:[0-9]+}/day-plans", h.HandleDayPlans).Methods("GET", "OPTIONS").Name("day-plans")
	programsRouter.HandleFunc("/{programId:[0-9]+}/day-plans", h.HandleGenerateDayPlan).Methods("POST").Name("day-plans-generate")
	programsRouter.HandleFunc("/{programId:[0-9]+}/day-plans/{date}", h.HandleDayPlan).Methods("GET", "OPTIONS").Name("day-plan")
}

// writeError maps store and service errors onto status codes.
func writeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, ErrProgramNotFound):
		pkg.WriteJSONError(w, "no active program", http.StatusNotFound)
	case errors.Is(err, ErrDayPlanNotFound):
		pkg.WriteJSONError(w, "day plan not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrUnknownActivity):
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnsupportedOwner):
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
	default:
		log.Errorf("%s: %s", what, err)
		pkg.WriteJSONError(w, "failed to "+what, http.StatusInternalServerError)
	}
}

func requireOwner(w http.ResponseWriter, r *http.Request) (auth.Owner, bool) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
	}
	return owner, ok
}

func (h *Handler) viewerLocation(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	tz := strings.TrimSpace(r.Header.Get(middleware.TimezoneHeader))
	if tz == "" {
		return h.defaultLoc, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		pkg.WriteJSONError(w, "invalid timezone", http.StatusBadRequest)
		return nil, false
	}
	return loc, true
}

// pathDate reads a YYYY-MM-DD path variable, "today" is resolved in loc.
func (h *Handler) pathDate(w http.ResponseWriter, r *http.Request, loc *time.Location) (civil.Date, bool) {
	raw := mux.Vars(r)["date"]
	if raw == "today" {
		return h.service.Today(loc), true
	}
	date, err := daycycle.ParseDate(raw)
	if err != nil {
		pkg.WriteJSONError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return civil.Date{}, false
	}
	return date, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || value <= 0 {
		pkg.WriteJSONError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

type dayActivities struct {
	Day        daycycle.Weekday    `json:"day"`
	Activities []daycycle.Activity `json:"activities"`
}

func sortedByTime(activities []daycycle.Activity) []daycycle.Activity {
	sorted := make([]daycycle.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinutesOfDay() < sorted[j].MinutesOfDay()
	})
	return sorted
}

func (h *Handler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.all")
	defer span.End()

	template := h.service.Template()
	days := make([]dayActivities, 0, len(daycycle.Weekdays))
	for _, day := range daycycle.Weekdays {
		days = append(days, dayActivities{
			Day:        day,
			Activities: sortedByTime(template.ActivitiesFor(day)),
		})
	}

	pkg.WriteJSON(w, map[string][]dayActivities{"activities": days}, http.StatusOK)
}

func (h *Handler) HandleActivitiesForDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.day")
	defer span.End()

	day := daycycle.Weekday(strings.ToLower(mux.Vars(r)["day"]))
	if !day.IsValid() {
		pkg.WriteJSONError(w, "invalid day", http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, dayActivities{
		Day:        day,
		Activities: sortedByTime(h.service.Template().ActivitiesFor(day)),
	}, http.StatusOK)
}

func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.active")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	p, err := h.service.ActiveProgram(ctx, owner)
	if err != nil {
		writeError(w, err, "get active program")
		return
	}

	pkg.WriteJSON(w, map[string]*Program{"program": p}, http.StatusOK)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.start")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Errorf("start program, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.StartProgram(ctx, owner, req, loc)
	if err != nil {
		writeError(w, err, "start program")
		return
	}

	pkg.WriteJSON(w, map[string]*Program{"program": p}, http.StatusCreated)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update program, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProgram(ctx, owner, id, update)
	if err != nil {
		writeError(w, err, "update program")
		return
	}

	pkg.WriteJSON(w, map[string]*Program{"program": p}, http.StatusOK)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.reset")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	p, err := h.service.ResetProgram(ctx, owner)
	if err != nil {
		writeError(w, err, "reset program")
		return
	}

	pkg.WriteJSON(w, map[string]*Program{"program": p}, http.StatusOK)
}

func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.day")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}
	date, ok := h.pathDate(w, r, loc)
	if !ok {
		return
	}

	day, err := h.service.DayView(ctx, owner, date, loc)
	if err != nil {
		writeError(w, err, "get day")
		return
	}

	pkg.WriteJSON(w, day, http.StatusOK)
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.toggle")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}
	date, ok := h.pathDate(w, r, loc)
	if !ok {
		return
	}

	result, err := h.service.ToggleActivity(ctx, owner, date, mux.Vars(r)["activityId"], loc)
	if err != nil {
		writeError(w, err, "toggle activity")
		return
	}

	pkg.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.notes")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}
	date, ok := h.pathDate(w, r, loc)
	if !ok {
		return
	}

	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("set notes, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	notes, err := h.service.SetActivityNotes(ctx, owner, date, mux.Vars(r)["activityId"], req)
	if err != nil {
		writeError(w, err, "set activity notes")
		return
	}

	pkg.WriteJSON(w, notes, http.StatusOK)
}

func (h *Handler) HandleCompletedDays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.completed-days")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	resp, err := h.service.CompletedDays(ctx, owner)
	if err != nil {
		writeError(w, err, "get completed days")
		return
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.stats")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(ctx, owner, loc)
	if err != nil {
		writeError(w, err, "get stats")
		return
	}

	pkg.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) HandleDayPlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dayplans.list")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	programID, ok := pathInt(w, r, "programId")
	if !ok {
		return
	}

	plans, err := h.service.DayPlans(ctx, owner, programID)
	if err != nil {
		writeError(w, err, "list day plans")
		return
	}

	pkg.WriteJSON(w, map[string][]DayPlanRecord{"day_plans": plans}, http.StatusOK)
}

type generateDayPlanRequest struct {
	// Date defaults to today in the viewer's timezone.
	Date string `json:"date"`
}

func (h *Handler) HandleGenerateDayPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dayplans.generate")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}
	programID, ok := pathInt(w, r, "programId")
	if !ok {
		return
	}

	var req generateDayPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	date := h.service.Today(loc)
	if req.Date != "" {
		d, err := daycycle.ParseDate(req.Date)
		if err != nil {
			pkg.WriteJSONError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = d
	}

	plan, err := h.service.GenerateDayPlan(ctx, owner, programID, date)
	if err != nil {
		writeError(w, err, "generate day plan")
		return
	}

	pkg.WriteJSON(w, map[string]*DayPlanRecord{"day_plan": plan}, http.StatusCreated)
}

func (h *Handler) HandleDayPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dayplans.get")
	defer span.End()

	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	loc, ok := h.viewerLocation(w, r)
	if !ok {
		return
	}
	programID, ok := pathInt(w, r, "programId")
	if !ok {
		return
	}
	date, ok := h.pathDate(w, r, loc)
	if !ok {
		return
	}

	plan, err := h.service.DayPlan(ctx, owner, programID, date)
	if err != nil {
		writeError(w, err, "get day plan")
		return
	}

	pkg.WriteJSON(w, map[string]*DayPlanRecord{"day_plan": plan}, http.StatusOK)
}
