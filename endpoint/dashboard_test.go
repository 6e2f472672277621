package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-therapy/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats(t *testing.T) {
	f := newTherapyFixture(t, 5)
	now := time.Now()
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local)
	sessions := f.schedule(t, f.token, f.therapy.ID, 3, noon)
	f.complete(t, f.token, sessions[0].ID, 5, 4)
	f.mustDo(t, requestParams{method: http.MethodPost, path: fmt.Sprintf("/session/%d/cancel", sessions[2].ID), token: f.token}, http.StatusOK, nil)
	f.createPatient(t, f.token, "Mark Twain", "0899")

	var stats endpoint.DashboardStats
	f.mustDo(t, requestParams{method: http.MethodGet, path: "/dashboard/stats", token: f.token}, http.StatusOK, &stats)
	assert.Equal(t, int64(2), stats.Patients)
	assert.Equal(t, int64(1), stats.ActiveRecords)
	assert.Equal(t, int64(1), stats.TherapiesByStatus["IN_PROGRESS"])
	assert.Equal(t, int64(1), stats.SessionsByStatus["COMPLETED"])
	assert.Equal(t, int64(1), stats.SessionsByStatus["SCHEDULED"])
	assert.Equal(t, int64(1), stats.SessionsByStatus["CANCELLED"])
	// Only the first session falls on today; the others are 3 and 6 days out.
	assert.Equal(t, int64(1), stats.SessionsToday)
	assert.Zero(t, stats.ScheduledToday)
}

func TestGetDashboardActivity(t *testing.T) {
	f := newTherapyFixture(t, 3)
	sessions := f.schedule(t, f.token, f.therapy.ID, 3, fixedStart())
	f.complete(t, f.token, sessions[0].ID, 7, 3)
	f.mustDo(t, requestParams{method: http.MethodPost, path: fmt.Sprintf("/session/%d/cancel", sessions[1].ID), token: f.token}, http.StatusOK, nil)

	var items []endpoint.ActivityItem
	f.mustDo(t, requestParams{method: http.MethodGet, path: "/dashboard/activity", token: f.token}, http.StatusOK, &items)
	require.Len(t, items, 2)

	assert.Equal(t, sessions[1].ID, items[0].SessionID)
	assert.Equal(t, "CANCELLED", items[0].Status)
	assert.NotNil(t, items[0].OccurredAt)

	done := items[1]
	assert.Equal(t, "COMPLETED", done.Status)
	assert.Equal(t, "Jane Roe", done.PatientName)
	assert.Equal(t, f.patient.PatientCode, done.PatientCode)
	assert.Equal(t, "TECAR", done.TherapyType)
	assert.Nil(t, done.TherapistName)
	require.NotNil(t, done.VasScoreBefore)
	assert.Equal(t, 7, *done.VasScoreBefore)

	f.mustDo(t, requestParams{method: http.MethodGet, path: "/dashboard/activity?limit=1", token: f.token}, http.StatusOK, &items)
	assert.Len(t, items, 1)
}
