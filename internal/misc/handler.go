package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/telemetry/metrics"
	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=misc_test

type guestCreator interface {
	NewGuest(ctx context.Context, createdAt time.Time) (string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	guests         guestCreator
	db             pinger
	versionInfo    string
	metricsManager *metrics.Manager
	Now            func() time.Time
}

func NewHandler(
	guests guestCreator,
	db pinger,
	versionInfo string,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		guests:         guests,
		db:             db,
		versionInfo:    versionInfo,
		metricsManager: metricsManager,
		Now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/api/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/api/guest", handler.handleNewGuest).Methods("POST", "OPTIONS").Name("new-guest")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Database      string `json:"database"`
	Authenticated bool   `json:"authenticated"`
	OwnerKind     string `json:"owner_kind,omitempty"`
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: handler.Now().UTC().Format(time.RFC3339Nano),
		Database:  "connected",
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if handler.db == nil {
		resp.Database = "disconnected"
	} else if err := handler.db.Ping(pingCtx); err != nil {
		log.Errorf("health, ping db: %s", err)
		span.SetStatus(codes.Error, err.Error())
		resp.Status = "degraded"
		resp.Database = "disconnected"
	}

	if owner, ok := auth.OwnerFromContext(ctx); ok {
		resp.Authenticated = owner.IsUser()
		resp.OwnerKind = string(owner.Kind)
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) handleNewGuest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.newGuest")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	guestID, err := handler.guests.NewGuest(ctx, handler.Now())
	if err != nil {
		log.Errorf("new guest: %s", err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "failed to create guest", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterGuestsCreated.Inc()
	}
	span.SetAttributes(attribute.String("guest.id", guestID))
	log.Tracef("new guest: %s", guestID)

	pkg.WriteJSON(w, map[string]string{
		"guest_id": guestID,
		"header":   auth.GuestHeader,
	}, http.StatusCreated)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
