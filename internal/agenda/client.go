// Package agenda syncs appointments from the external scheduling
// service's webhook into the local calendar.
package agenda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

// Repository is the subset of storage the service needs
type Repository interface {
	ReplaceAppointments(ctx context.Context, userID string, from, to time.Time, appointments []models.Appointment) error
	GetAppointments(ctx context.Context, userID string, from, to time.Time) ([]models.Appointment, error)
}

// Service calls the scheduling webhook and persists the returned events
type Service struct {
	webhookURL string
	repo       Repository
	logger     *logrus.Logger
	client     *http.Client
}

// webhookRequest is the payload the scheduling service expects
type webhookRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Agenda string `json:"agenda"`
}

// webhookEvent is one calendar entry in the webhook response
type webhookEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

func NewService(webhookURL string, repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		webhookURL: webhookURL,
		repo:       repo,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a webhook endpoint is configured
func (s *Service) Enabled() bool {
	return s.webhookURL != ""
}

// Sync fetches the actor's events for a window and replaces the stored
// webhook-sourced appointments in that window
func (s *Service) Sync(ctx context.Context, userID, agendaFilter string, from, to time.Time) ([]models.Appointment, error) {
	if !s.Enabled() {
		return nil, errors.New("agenda webhook is not configured")
	}

	events, err := s.fetchEvents(ctx, agendaFilter, from, to)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	appointments := make([]models.Appointment, 0, len(events))
	reviewCount := 0
	for _, event := range events {
		startsAt, err := parseEventTime(event.Start)
		if err != nil {
			s.logger.WithError(err).WithField("title", event.Title).Warn("Skipping event with unparseable start")
			continue
		}
		endsAt, err := parseEventTime(event.End)
		if err != nil {
			endsAt = startsAt.Add(time.Hour)
		}

		parsed := ParseDescription(event.Description)
		if parsed.NeedsReview {
			reviewCount++
		}

		appointments = append(appointments, models.Appointment{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       event.Title,
			ClientName:  parsed.ClientName,
			EventType:   parsed.EventType,
			StartsAt:    startsAt,
			EndsAt:      endsAt,
			Source:      "webhook",
			NeedsReview: parsed.NeedsReview,
			CreatedAt:   now,
		})
	}

	if reviewCount > 0 {
		s.logger.WithFields(logrus.Fields{
			"count":            reviewCount,
			"contract_version": descriptionContractVersion,
		}).Warn("Events flagged for manual review")
	}

	if err := s.repo.ReplaceAppointments(ctx, userID, from, to, appointments); err != nil {
		return nil, fmt.Errorf("failed to store appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) fetchEvents(ctx context.Context, agendaFilter string, from, to time.Time) ([]webhookEvent, error) {
	payload := webhookRequest{
		Start:  from.Format(time.RFC3339),
		End:    to.Format(time.RFC3339),
		Agenda: agendaFilter,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call agenda webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, errors.New("agenda webhook rejected the credentials")
		case http.StatusNotFound:
			return nil, errors.New("agenda webhook endpoint not found - check the configured URL")
		default:
			return nil, fmt.Errorf("agenda webhook error (status %d): %s", resp.StatusCode, string(data))
		}
	}

	var events []webhookEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode webhook response: %v", err)
	}
	return events, nil
}

// parseEventTime accepts the formats the calendar service has been
// observed to emit
func parseEventTime(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized event time: %q", value)
}
