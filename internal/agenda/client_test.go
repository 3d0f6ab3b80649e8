package agenda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"imobdesk/server/internal/models"
)

type fakeAppointmentRepo struct {
	stored []models.Appointment
}

func (f *fakeAppointmentRepo) ReplaceAppointments(ctx context.Context, userID string, from, to time.Time, appointments []models.Appointment) error {
	f.stored = appointments
	return nil
}

func (f *fakeAppointmentRepo) GetAppointments(ctx context.Context, userID string, from, to time.Time) ([]models.Appointment, error) {
	return f.stored, nil
}

func TestSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req webhookRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vendas", req.Agenda)

		events := []webhookEvent{
			{
				Title:       "Visita apto 32",
				Description: "Cliente: João Silva - Visita",
				Start:       "2026-09-01T10:00:00Z",
				End:         "2026-09-01T11:00:00Z",
			},
			{
				Title:       "Bloqueio de agenda",
				Description: "almoço com a equipe",
				Start:       "2026-09-01T12:00:00Z",
				End:         "2026-09-01T13:00:00Z",
			},
		}
		json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	repo := &fakeAppointmentRepo{}
	service := NewService(server.URL, repo, logrus.New())

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	appointments, err := service.Sync(context.Background(), "broker-1", "vendas", from, to)
	assert.NoError(t, err)
	assert.Len(t, appointments, 2)

	assert.Equal(t, "João Silva", appointments[0].ClientName)
	assert.Equal(t, "Visita", appointments[0].EventType)
	assert.False(t, appointments[0].NeedsReview)

	// Unrecognized description is kept but flagged, never guessed
	assert.True(t, appointments[1].NeedsReview)
	assert.Empty(t, appointments[1].ClientName)

	assert.Len(t, repo.stored, 2)
}

func TestSync_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(server.URL, &fakeAppointmentRepo{}, logrus.New())
	_, err := service.Sync(context.Background(), "broker-1", "", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestSync_NotConfigured(t *testing.T) {
	service := NewService("", &fakeAppointmentRepo{}, logrus.New())
	assert.False(t, service.Enabled())
	_, err := service.Sync(context.Background(), "broker-1", "", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestSync_SkipsUnparseableStart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]webhookEvent{
			{Title: "Broken", Description: "Cliente: X - Y", Start: "not-a-date", End: ""},
		})
	}))
	defer server.Close()

	service := NewService(server.URL, &fakeAppointmentRepo{}, logrus.New())
	appointments, err := service.Sync(context.Background(), "broker-1", "", time.Now(), time.Now().Add(time.Hour))
	assert.NoError(t, err)
	assert.Empty(t, appointments)
}
