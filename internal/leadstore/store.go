// Package leadstore maintains a per-broker, eventually consistent view
// of the lead pipeline and backs the kanban board's stage transitions.
package leadstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// Repository is the persistence surface the store mutates through
type Repository interface {
	GetLeadsByUser(ctx context.Context, userID string) ([]models.Lead, error)
	InsertLead(ctx context.Context, lead *models.Lead) error
	UpdateLeadFields(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.Lead, error)
	UpdateLeadStage(ctx context.Context, id, userID, stage string) (*models.Lead, error)
	DeleteLead(ctx context.Context, id, userID string) error
}

// fieldColumns is the allow-list mapping form field names to lead
// columns. Anything not listed here is silently dropped, never passed
// through to storage.
var fieldColumns = map[string]string{
	"nome":          "name",
	"email":         "email",
	"telefone":      "phone",
	"endereco":      "address",
	"estadoCivil":   "marital_status",
	"cpf":           "cpf",
	"origem":        "source",
	"etapa":         "stage",
	"interesse":     "interest",
	"valorEstimado": "estimated_value",
	"observacoes":   "notes",
	"imovelId":      "property_id",
}

// Store mirrors one broker's leads. Handlers and the change feed both
// mutate the collection, so every access goes through the mutex.
type Store struct {
	repo   Repository
	logger *logrus.Logger
	userID string

	mu      sync.RWMutex
	leads   []models.Lead
	loadErr string
}

// NewStore creates a store for one authenticated broker. The repository
// handle is injected; the store owns no global state.
func NewStore(repo Repository, logger *logrus.Logger, userID string) *Store {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Store{
		repo:   repo,
		logger: logger,
		userID: userID,
	}
}

// Load replaces the mirror with a full fetch. On failure the collection
// resets to empty and the error is kept for the caller; there is no
// automatic retry.
func (s *Store) Load(ctx context.Context) error {
	leads, err := s.repo.GetLeadsByUser(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Failed to load leads")
		s.leads = nil
		s.loadErr = err.Error()
		return err
	}

	for i := range leads {
		leads[i].Stage = config.NormalizeStage(leads[i].Stage)
	}
	s.leads = leads
	s.loadErr = ""
	return nil
}

// MoveLeadToStage persists the stage change first and reflects it
// locally only after remote success. The flag reports whether the move
// stuck; a non-nil error means storage failed rather than the lead
// being absent or the stage invalid.
func (s *Store) MoveLeadToStage(ctx context.Context, id, stage string) (bool, error) {
	if !config.IsValidStage(stage) {
		s.logger.WithFields(logrus.Fields{
			"lead_id": id,
			"stage":   stage,
		}).Warn("Rejected move to unknown stage")
		return false, nil
	}

	updated, err := s.repo.UpdateLeadStage(ctx, id, s.userID, stage)
	if err != nil {
		if errors.Is(err, models.ErrLeadNotFound) {
			return false, nil
		}
		s.logger.WithError(err).WithField("lead_id", id).Error("Failed to move lead")
		s.setError(err)
		return false, err
	}

	s.mu.Lock()
	s.replaceLocked(updated)
	s.mu.Unlock()
	return true, nil
}

// CreateLead validates, persists and prepends a new lead. Validation
// failures never reach storage. Returns nil on any failure.
func (s *Store) CreateLead(ctx context.Context, input models.LeadInput) *models.Lead {
	if err := validateInput(input); err != nil {
		s.logger.WithError(err).Warn("Rejected lead input")
		s.setError(err)
		return nil
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		MaritalStatus:  input.MaritalStatus,
		CPF:            input.CPF,
		Source:         input.Source,
		Stage:          config.NormalizeStage(input.Stage),
		Interest:       input.Interest,
		EstimatedValue: input.EstimatedValue,
		Notes:          input.Notes,
		PropertyID:     input.PropertyID,
		UserID:         s.userID,
		ContactDate:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.InsertLead(ctx, lead); err != nil {
		s.logger.WithError(err).Error("Failed to create lead")
		s.setError(err)
		return nil
	}

	s.mu.Lock()
	s.leads = append([]models.Lead{*lead}, s.leads...)
	s.mu.Unlock()
	return lead
}

// UpdateLead maps form field names through the allow-list, persists the
// sparse update and merges the result into the mirror
func (s *Store) UpdateLead(ctx context.Context, id string, fields map[string]interface{}) (*models.Lead, error) {
	columns := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		column, ok := fieldColumns[name]
		if !ok {
			s.logger.WithField("field", name).Debug("Dropped unknown lead field")
			continue
		}
		if column == "stage" {
			value = config.NormalizeStage(fmt.Sprint(value))
		}
		columns[column] = value
	}

	updated, err := s.repo.UpdateLeadFields(ctx, id, s.userID, columns)
	if err != nil {
		if errors.Is(err, models.ErrLeadNotFound) {
			return nil, nil
		}
		s.logger.WithError(err).WithField("lead_id", id).Error("Failed to update lead")
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	s.replaceLocked(updated)
	s.mu.Unlock()
	return updated, nil
}

// DeleteLead removes the lead remotely, then locally
func (s *Store) DeleteLead(ctx context.Context, id string) (bool, error) {
	if err := s.repo.DeleteLead(ctx, id, s.userID); err != nil {
		if errors.Is(err, models.ErrLeadNotFound) {
			return false, nil
		}
		s.logger.WithError(err).WithField("lead_id", id).Error("Failed to delete lead")
		s.setError(err)
		return false, err
	}

	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	return true, nil
}

// Apply merges a change-feed event into the mirror. Events for other
// owners are discarded even though publishers already scope by owner.
func (s *Store) Apply(event models.LeadEvent) {
	if event.UserID != s.userID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case models.LeadInserted:
		if event.Lead == nil {
			return
		}
		for _, existing := range s.leads {
			if existing.ID == event.LeadID {
				return // already mirrored, e.g. an echo of our own insert
			}
		}
		lead := *event.Lead
		lead.Stage = config.NormalizeStage(lead.Stage)
		s.leads = append([]models.Lead{lead}, s.leads...)

	case models.LeadUpdated:
		if event.Lead == nil {
			return
		}
		for i, existing := range s.leads {
			if existing.ID != event.LeadID {
				continue
			}
			// Discard stale events: a slower echo must not clobber a
			// newer local write
			if existing.UpdatedAt.After(event.Lead.UpdatedAt) {
				return
			}
			lead := *event.Lead
			lead.Stage = config.NormalizeStage(lead.Stage)
			s.leads[i] = lead
			return
		}

	case models.LeadDeleted:
		s.removeLocked(event.LeadID)
	}
}

// Leads returns a snapshot of the mirrored collection
func (s *Store) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]models.Lead, len(s.leads))
	copy(snapshot, s.leads)
	return snapshot
}

// Err returns the last failure message, empty when healthy
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.loadErr = err.Error()
	s.mu.Unlock()
}

func (s *Store) replaceLocked(lead *models.Lead) {
	if lead == nil {
		return
	}
	for i := range s.leads {
		if s.leads[i].ID == lead.ID {
			s.leads[i] = *lead
			return
		}
	}
}

func (s *Store) removeLocked(id string) {
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return
		}
	}
}

func validateInput(input models.LeadInput) error {
	if input.Name == "" {
		return fmt.Errorf("lead name is required")
	}
	if input.Email == "" && input.Phone == "" {
		return fmt.Errorf("lead needs an email or phone number")
	}
	return nil
}
