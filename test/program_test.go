//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/2beens/kadjot/internal/daycycle"
	"github.com/2beens/kadjot/internal/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type programEnvelope struct {
	Program *program.Program `json:"program"`
}

// exerciseProgram walks a program through its lifecycle, for any owner.
func (s *IntegrationTestSuite) exerciseProgram(ctx context.Context, creds credentials) int {
	t := s.T()

	var active programEnvelope
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/programs/active", nil, creds, &active))
	assert.Nil(t, active.Program)

	var started programEnvelope
	require.Equal(t, http.StatusCreated, s.do(ctx, http.MethodPost, "/api/programs", program.StartRequest{
		StartDate:    "2024-01-01",
		DayStartTime: "05:00",
	}, creds, &started))
	require.NotNil(t, started.Program)
	assert.Equal(t, 1, started.Program.CurrentWeek)
	assert.Equal(t, program.StatusActive, started.Program.Status)

	var day program.DayResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/programs/active/days/2024-01-01", nil, creds, &day))
	assert.Equal(t, 1, day.ProgramDay)
	assert.Equal(t, daycycle.Monday, day.Weekday)
	require.Len(t, day.Activities, 3)
	for _, a := range day.Activities {
		assert.Equal(t, daycycle.StatusMissed, a.Status)
		assert.True(t, a.Toggleable)
	}

	var toggled program.ToggleResult
	for i, id := range []string{"core", "lunch", "afternoon"} {
		path := fmt.Sprintf("/api/programs/active/days/2024-01-01/activities/%s/toggle", id)
		require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, path, nil, creds, &toggled))
		assert.True(t, toggled.Completed)
		assert.Equal(t, i == 2, toggled.DayCompleted)
	}
	assert.Equal(t, 100, toggled.Day.CompletionPercent)
	assert.Equal(t, 1, toggled.CompletedDaysCount)

	var notes program.ActivityNotes
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPut,
		"/api/programs/active/days/2024-01-01/activities/core/notes",
		program.NotesRequest{Notes: "held the plank for 90s"}, creds, &notes))
	assert.Equal(t, "held the plank for 90s", notes.Notes)
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/programs/active/days/2024-01-01", nil, creds, &day))
	assert.Equal(t, map[string]string{"core": "held the plank for 90s"}, day.Notes)

	assert.Equal(t, http.StatusBadRequest, s.do(ctx, http.MethodPost,
		"/api/programs/active/days/2024-01-01/activities/nope/toggle", nil, creds, nil))

	var completed program.CompletedDaysResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/programs/active/completed-days", nil, creds, &completed))
	assert.Equal(t, 1, completed.Count)

	var stats program.StatsResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/programs/active/stats", nil, creds, &stats))
	assert.True(t, stats.IsStarted)
	assert.Equal(t, 1, stats.DaysCompleted)
	assert.Equal(t, 3, stats.ActivitiesCompleted)

	var plan map[string]program.DayPlanRecord
	path := fmt.Sprintf("/api/programs/%d/day-plans", started.Program.ID)
	require.Equal(t, http.StatusCreated, s.do(ctx, http.MethodPost, path, map[string]string{"date": "2024-01-09"}, creds, &plan))
	assert.Equal(t, 9, plan["day_plan"].ProgramDay)
	assert.Equal(t, daycycle.Tuesday, plan["day_plan"].DayOfCycle)

	var plans map[string][]program.DayPlanRecord
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, path, nil, creds, &plans))
	assert.Len(t, plans["day_plans"], 1)

	var reset programEnvelope
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodDelete, "/api/programs/active", nil, creds, &reset))
	assert.Equal(t, program.StatusReset, reset.Program.Status)
	assert.Equal(t, http.StatusNotFound, s.do(ctx, http.MethodGet, "/api/programs/active/completed-days", nil, creds, nil))

	return started.Program.ID
}

func (s *IntegrationTestSuite) TestProgram_Guest() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.exerciseProgram(ctx, s.newGuest(ctx))
}

func (s *IntegrationTestSuite) TestProgram_RegisteredUser() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, registered := s.register(ctx)
	programID := s.exerciseProgram(ctx, credentials{token: registered.Token})

	// reset keeps the program row and discards its progress
	var status string
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT status FROM programs WHERE id = $1`, programID).Scan(&status))
	assert.Equal(t, "reset", status)

	var progressRows int
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_progress WHERE program_id = $1`, programID,
	).Scan(&progressRows))
	assert.Zero(t, progressRows)
}

func (s *IntegrationTestSuite) TestProgram_NoOwner() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Equal(s.T(), http.StatusUnauthorized, s.do(ctx, http.MethodGet, "/api/programs/active", nil, credentials{}, nil))
	assert.Equal(s.T(), http.StatusUnauthorized, s.do(ctx, http.MethodGet, "/api/programs/active", nil,
		credentials{guestID: "not-a-known-guest-id-000"}, nil))
}
