package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/middleware"
	"github.com/2beens/kadjot/internal/telemetry/metrics"
	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) (bool, error)
	Me(ctx context.Context, userID int) (*User, error)
}

type Handler struct {
	service usersService
}

func NewHandler(service usersService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	// registered first, so the rate limited subrouter below does not claim it
	mainRouter.HandleFunc("/api/auth/me", h.HandleMe).Methods("GET", "OPTIONS").Name("me")

	authRouter := mainRouter.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", h.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", h.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", h.HandleLogout).Methods("POST", "OPTIONS").Name("logout")

	// rate limit the auth endpoints to prevent abuse
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, metricsManager))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("register, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUserExists):
			pkg.WriteJSONError(w, ErrUserExists.Error(), http.StatusConflict)
		default:
			log.Errorf("register user [%s]: %s", req.Username, err)
			pkg.WriteJSONError(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSON(w, resp, http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrWrongPassword):
			pkg.WriteJSONError(w, "invalid credentials", http.StatusUnauthorized)
		default:
			log.Errorf("login user [%s]: %s", req.Username, err)
			pkg.WriteJSONError(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	log.Trace("new login success")
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := h.service.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout: %s", err)
		pkg.WriteJSONError(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSON(w, map[string]bool{"logged_out": true}, http.StatusOK)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	owner, ok := auth.OwnerFromContext(ctx)
	if !ok || !owner.IsUser() {
		pkg.WriteJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.service.Me(ctx, owner.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user %d: %s", owner.UserID, err)
		pkg.WriteJSONError(w, "failed to get user", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, map[string]*User{"user": user}, http.StatusOK)
}
