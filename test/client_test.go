//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/users"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	token   string
	guestID string
}

// do sends a request as the test client and decodes a JSON body into out,
// when out is not nil.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, body any, creds credentials, out any) int {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if creds.token != "" {
		req.Header.Set(auth.TokenHeader, creds.token)
	}
	if creds.guestID != "" {
		req.Header.Set(auth.GuestHeader, creds.guestID)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(respBytes, out), string(respBytes))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) newGuest(ctx context.Context) credentials {
	var resp map[string]string
	status := s.do(ctx, http.MethodPost, "/api/guest", nil, credentials{}, &resp)
	require.Equal(s.T(), http.StatusCreated, status)
	require.NotEmpty(s.T(), resp["guest_id"])
	return credentials{guestID: resp["guest_id"]}
}

func (s *IntegrationTestSuite) register(ctx context.Context) (users.RegisterRequest, *users.AuthResponse) {
	req := users.RegisterRequest{
		Username: gofakeit.Username() + gofakeit.DigitN(4),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 10),
	}
	var resp users.AuthResponse
	status := s.do(ctx, http.MethodPost, "/api/auth/register", req, credentials{}, &resp)
	require.Equal(s.T(), http.StatusCreated, status)
	require.NotEmpty(s.T(), resp.Token)
	return req, &resp
}
