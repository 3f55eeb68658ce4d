package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/kadjot/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/codes"
)

type LoginChecker struct {
	ttl         time.Duration
	guestTTL    time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl, guestTTL time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		guestTTL:    guestTTL,
		redisClient: redisClient,
	}
}

// LoggedUserID returns the user behind a session token, or ErrNotLoggedIn
// when the session is missing or older than the TTL.
func (lc *LoginChecker) LoggedUserID(ctx context.Context, token string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.loginchecker.loggeduserid")
	defer func() {
		if err != nil && !errors.Is(err, ErrNotLoggedIn) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	session, err := lc.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if len(session) == 0 {
		return 0, ErrNotLoggedIn
	}

	createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session created at: %w", err)
	}
	if time.Since(time.Unix(createdAtUnix, 0)) > lc.ttl {
		return 0, ErrNotLoggedIn
	}

	userID, err := strconv.Atoi(session[fieldUserID])
	if err != nil {
		return 0, fmt.Errorf("parse session user id: %w", err)
	}
	return userID, nil
}

// GuestExists checks that the guest id was minted by us and has not expired.
// Every successful check extends the guest's lifetime.
func (lc *LoginChecker) GuestExists(ctx context.Context, guestID string) (bool, error) {
	if !IsValidGuestID(guestID) {
		return false, nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.loginchecker.guestexists")
	defer span.End()

	extended, err := lc.redisClient.Expire(ctx, guestKey(guestID), lc.guestTTL).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("extend guest: %w", err)
	}
	return extended, nil
}
