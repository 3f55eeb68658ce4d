package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "kadjot-session||"
	tokensSetKey     = "kadjot-sessions"
	guestKeyPrefix   = "kadjot-guest||"

	tokenLength = 35

	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	Token     string
	UserID    int
	CreatedAt time.Time
}

// Service manages user sessions and guest ids, both kept in redis.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	guestTTL    time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	guestTTL time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		ttl:            ttl,
		guestTTL:       guestTTL,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func guestKey(guestID string) string {
	return guestKeyPrefix + guestID
}

// Login opens a new session for the user and returns its token.
func (as *Service) Login(ctx context.Context, userID int, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", err
	}

	key := sessionKey(token)
	if err := as.redisClient.HSet(ctx, key, fieldUserID, userID, fieldCreatedAt, createdAt.Unix()).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := as.redisClient.Expire(ctx, key, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("expire session: %w", err)
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("add session token: %w", err)
	}

	return token, nil
}

// Logout removes the session. It reports false if there was none.
func (as *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.logout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, fmt.Errorf("remove session token: %w", err)
	}

	return deleted > 0, nil
}

// NewGuest mints a guest id and registers it for the guest TTL.
func (as *Service) NewGuest(ctx context.Context, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.newguest")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	guestID, err := as.RandStringFunc(guestIDLength)
	if err != nil {
		return "", fmt.Errorf("generate guest id: %w", err)
	}
	if err := as.redisClient.Set(ctx, guestKey(guestID), createdAt.Unix(), as.guestTTL).Err(); err != nil {
		return "", fmt.Errorf("store guest: %w", err)
	}
	return guestID, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		session, err := as.redisClient.HGetAll(ctx, sessionKey(token)).Result()
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		// already expired by redis itself
		if len(session) == 0 {
			toRemove = append(toRemove, token)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}

		// remove token from the list of sessions
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}
	}
	log.Debugf("=> auth service, scan and clean done, removed %d sessions", len(toRemove))
}
