//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"

	"github.com/2beens/kadjot/internal/misc"
	"github.com/2beens/kadjot/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestHealth() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var health misc.HealthResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/health", nil, credentials{}, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "connected", health.Database)
	assert.False(t, health.Authenticated)
}

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerReq, registered := s.register(ctx)
	assert.Equal(t, registerReq.Username, registered.User.Username)

	// duplicates are refused
	assert.Equal(t, http.StatusConflict, s.do(ctx, http.MethodPost, "/api/auth/register", registerReq, credentials{}, nil))

	var me map[string]users.User
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/auth/me", nil, credentials{token: registered.Token}, &me))
	assert.Equal(t, registered.User.ID, me["user"].ID)

	var health misc.HealthResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/health", nil, credentials{token: registered.Token}, &health))
	assert.True(t, health.Authenticated)

	assert.Equal(t, http.StatusUnauthorized, s.do(ctx, http.MethodPost, "/api/auth/login", users.LoginRequest{
		Username: registerReq.Username,
		Password: "wrong-password",
	}, credentials{}, nil))

	var loggedIn users.AuthResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/api/auth/login", users.LoginRequest{
		Username: registerReq.Email,
		Password: registerReq.Password,
	}, credentials{}, &loggedIn))
	assert.NotEqual(t, registered.Token, loggedIn.Token)

	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/api/auth/logout", nil, credentials{token: loggedIn.Token}, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(ctx, http.MethodGet, "/api/auth/me", nil, credentials{token: loggedIn.Token}, nil))

	// the first session is still alive
	assert.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/auth/me", nil, credentials{token: registered.Token}, nil))
}
