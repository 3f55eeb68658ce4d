package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/kadjot/internal/telemetry/metrics"
	"github.com/2beens/kadjot/internal/telemetry/tracing"
	"github.com/2beens/kadjot/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
}

type sessionManager interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Service struct {
	repo     usersRepo
	sessions sessionManager
	metrics  *metrics.Manager

	// injectable for tests, bcrypt with a high cost is slow
	HashPasswordFunc  func(password string) (string, error)
	CheckPasswordFunc func(password, hash string) bool
}

func NewService(repo usersRepo, sessions sessionManager, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:              repo,
		sessions:          sessions,
		metrics:           metricsManager,
		HashPasswordFunc:  pkg.HashPassword,
		CheckPasswordFunc: pkg.CheckPasswordHash,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (_ *AuthResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.register")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := s.HashPasswordFunc(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Add(ctx, &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))

	token, err := s.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterRegistrations.Inc()
	}
	log.Debugf("new user registered: %d [%s]", user.ID, user.Username)

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (_ *AuthResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.login")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			result := "ok"
			if err != nil {
				result = "failed"
			}
			s.metrics.CounterLogins.WithLabelValues(result).Inc()
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", req.Username)
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.CheckPasswordFunc(req.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", req.Username)
		return nil, ErrWrongPassword
	}

	token, err := s.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.logout")
	defer span.End()

	loggedOut, err := s.sessions.Logout(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("close session: %w", err)
	}
	return loggedOut, nil
}

func (s *Service) Me(ctx context.Context, userID int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.me")
	defer span.End()

	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}
