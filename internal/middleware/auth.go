package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
	GuestExists(ctx context.Context, guestID string) (bool, error)
}

type AuthMiddlewareHandler struct {
	loginChecker         loginChecker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(loginChecker loginChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			// misc handler:
			"/":           true,
			"/version":    true,
			"/api/health": true,
			"/api/guest":  true,

			// users handler:
			"/api/auth/register": true,
			"/api/auth/login":    true,
			"/api/auth/logout":   true,
		},
		allowedPathsPrefixes: []string{
			"/api/activities",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resolveOwner prefers a valid session token over a guest id.
func (h *AuthMiddlewareHandler) resolveOwner(ctx context.Context, r *http.Request) (auth.Owner, bool, error) {
	if token := r.Header.Get(auth.TokenHeader); token != "" {
		userID, err := h.loginChecker.LoggedUserID(ctx, token)
		if err == nil {
			return auth.UserOwner(userID), true, nil
		}
		if !errors.Is(err, auth.ErrNotLoggedIn) {
			return auth.Owner{}, false, err
		}
		log.Tracef("[invalid token] [auth middleware] => %s", r.URL.Path)
	}

	if guestID := r.Header.Get(auth.GuestHeader); guestID != "" {
		exists, err := h.loginChecker.GuestExists(ctx, guestID)
		if err != nil {
			return auth.Owner{}, false, err
		}
		if exists {
			return auth.GuestOwner(guestID), true, nil
		}
		log.Tracef("[unknown guest] [auth middleware] => %s", r.URL.Path)
	}

	return auth.Owner{}, false, nil
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			owner, found, err := h.resolveOwner(ctx, r)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}

			if found {
				span.SetAttributes(attribute.String("owner", owner.String()))
				ctx = auth.ContextWithOwner(ctx, owner)
			}

			if !found && !h.pathIsAlwaysAllowed(r.URL.Path) {
				log.Tracef("[no owner] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
