package services

import (
	"testing"
	"time"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMission(t *testing.T, missions *MissionService, difficulty int) *models.Mission {
	t.Helper()
	mission := models.Mission{
		ID:         uuid.NewString(),
		Title:      "Dead Drop at the Docks",
		Kind:       "retrieval",
		Difficulty: difficulty,
	}
	require.NoError(t, missions.DB.Create(&mission).Error)
	return &mission
}

func TestAdvanceAssignment_FirstScanAccepts(t *testing.T) {
	_, _, _, missions, _, _ := newTestStack(t)
	mission := seedMission(t, missions, 2)

	update, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "accepted", update.Action)
	assert.Equal(t, models.AssignmentInProgress, update.Status)

	assignment, err := missions.GetAssignment(mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentInProgress, assignment.Status)
	assert.False(t, assignment.StartedAt.IsZero())
	assert.Nil(t, assignment.CompletedAt)
}

func TestAdvanceAssignment_SecondScanCompletes(t *testing.T) {
	_, _, _, missions, _, _ := newTestStack(t)
	mission := seedMission(t, missions, 2)

	_, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)

	update, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", update.Action)
	assert.Equal(t, models.AssignmentSucceeded, update.Status)

	assignment, err := missions.GetAssignment(mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentSucceeded, assignment.Status)
	require.NotNil(t, assignment.CompletedAt)
	assert.WithinDuration(t, time.Now(), *assignment.CompletedAt, time.Minute)
}

func TestAdvanceAssignment_TerminalIsNoOp(t *testing.T) {
	_, _, _, missions, _, _ := newTestStack(t)
	mission := seedMission(t, missions, 2)

	_, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)
	_, err = missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)

	before, err := missions.GetAssignment(mission.ID, "player-1")
	require.NoError(t, err)

	update, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "none", update.Action)
	assert.Equal(t, models.AssignmentSucceeded, update.Status)

	// No regression, no new completion timestamp.
	after, err := missions.GetAssignment(mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.CompletedAt.Unix(), after.CompletedAt.Unix())
}

func TestAdvanceAssignment_FailedStaysFailed(t *testing.T) {
	_, _, _, missions, _, _ := newTestStack(t)
	mission := seedMission(t, missions, 1)

	now := time.Now()
	require.NoError(t, missions.DB.Create(&models.MissionAssignment{
		ID:          uuid.NewString(),
		MissionID:   mission.ID,
		PlayerID:    "player-1",
		Status:      models.AssignmentFailed,
		StartedAt:   now.Add(-time.Hour),
		CompletedAt: &now,
	}).Error)

	update, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "none", update.Action)
	assert.Equal(t, models.AssignmentFailed, update.Status)
}

func TestAdvanceAssignment_PerPlayerIsolation(t *testing.T) {
	_, _, _, missions, _, _ := newTestStack(t)
	mission := seedMission(t, missions, 1)

	_, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-1")
	require.NoError(t, err)

	update, err := missions.AdvanceAssignment(missions.DB, mission.ID, "player-2")
	require.NoError(t, err)
	assert.Equal(t, "accepted", update.Action)
}
