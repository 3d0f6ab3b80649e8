package leadstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetLeadsByUser(ctx context.Context, userID string) ([]models.Lead, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

func (m *MockRepository) InsertLead(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockRepository) UpdateLeadFields(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.Lead, error) {
	args := m.Called(ctx, id, userID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockRepository) UpdateLeadStage(ctx context.Context, id, userID, stage string) (*models.Lead, error) {
	args := m.Called(ctx, id, userID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockRepository) DeleteLead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// fakeRepository keeps leads in memory for flow tests
type fakeRepository struct {
	leads map[string]*models.Lead
	order []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{leads: make(map[string]*models.Lead)}
}

func (f *fakeRepository) GetLeadsByUser(ctx context.Context, userID string) ([]models.Lead, error) {
	var out []models.Lead
	for i := len(f.order) - 1; i >= 0; i-- {
		lead := f.leads[f.order[i]]
		if lead != nil && lead.UserID == userID {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (f *fakeRepository) InsertLead(ctx context.Context, lead *models.Lead) error {
	cp := *lead
	f.leads[lead.ID] = &cp
	f.order = append(f.order, lead.ID)
	return nil
}

func (f *fakeRepository) UpdateLeadFields(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return nil, models.ErrLeadNotFound
	}
	if stage, ok := fields["stage"]; ok {
		lead.Stage = stage.(string)
	}
	if name, ok := fields["name"]; ok {
		lead.Name = name.(string)
	}
	lead.UpdatedAt = time.Now().UTC()
	cp := *lead
	return &cp, nil
}

func (f *fakeRepository) UpdateLeadStage(ctx context.Context, id, userID, stage string) (*models.Lead, error) {
	return f.UpdateLeadFields(ctx, id, userID, map[string]interface{}{"stage": stage})
}

func (f *fakeRepository) DeleteLead(ctx context.Context, id, userID string) error {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return models.ErrLeadNotFound
	}
	delete(f.leads, id)
	for i, lid := range f.order {
		if lid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func newTestStore(repo Repository) *Store {
	logger := logrus.New()
	return NewStore(repo, logger, "broker-1")
}

func TestLoad_NormalizesUnknownStages(t *testing.T) {
	repo := &MockRepository{}
	repo.On("GetLeadsByUser", mock.Anything, "broker-1").Return([]models.Lead{
		{ID: "a", Name: "Ana", Stage: ""},
		{ID: "b", Name: "Bruno", Stage: "definitely-not-a-stage"},
		{ID: "c", Name: "Carla", Stage: "Qualificado"},
	}, nil)

	store := newTestStore(repo)
	err := store.Load(context.Background())
	assert.NoError(t, err)

	leads := store.Leads()
	assert.Len(t, leads, 3)
	assert.Equal(t, config.DefaultStage, leads[0].Stage)
	assert.Equal(t, config.DefaultStage, leads[1].Stage)
	assert.Equal(t, "Qualificado", leads[2].Stage)
}

func TestLoad_FailureResetsCollection(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)

	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "11988887777"})
	assert.NotNil(t, lead)
	assert.Len(t, store.Leads(), 1)

	failing := &MockRepository{}
	failing.On("GetLeadsByUser", mock.Anything, "broker-1").Return(nil, errors.New("connection refused"))
	store.repo = failing

	err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.Leads())
	assert.Equal(t, "connection refused", store.Err())
}

func TestLoad_RetrySucceedsAfterFailure(t *testing.T) {
	fake := newFakeRepository()
	seeded := newTestStore(fake)
	assert.NotNil(t, seeded.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "11988887777"}))

	// First load fails against a broken repository
	failing := &MockRepository{}
	failing.On("GetLeadsByUser", mock.Anything, "broker-1").Return(nil, errors.New("connection refused"))

	store := newTestStore(failing)
	assert.Error(t, store.Load(context.Background()))
	assert.Empty(t, store.Leads())
	assert.Equal(t, "connection refused", store.Err())

	// A later full reload against healthy storage recovers the mirror
	// and clears the error
	store.repo = fake
	assert.NoError(t, store.Load(context.Background()))
	assert.Len(t, store.Leads(), 1)
	assert.Empty(t, store.Err())
}

func TestCreateLead_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input models.LeadInput
		ok    bool
	}{
		{"Name and phone", models.LeadInput{Name: "Ana", Phone: "11999999999"}, true},
		{"Name and email", models.LeadInput{Name: "Ana", Email: "ana@example.com"}, true},
		{"Missing name", models.LeadInput{Phone: "11999999999"}, false},
		{"No contact info", models.LeadInput{Name: "Ana"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{}
			if tt.ok {
				repo.On("InsertLead", mock.Anything, mock.Anything).Return(nil).Once()
			}

			store := newTestStore(repo)
			lead := store.CreateLead(context.Background(), tt.input)

			if tt.ok {
				assert.NotNil(t, lead)
				repo.AssertExpectations(t)
			} else {
				assert.Nil(t, lead)
				// Validation failures never reach the repository
				repo.AssertNotCalled(t, "InsertLead", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCreateLead_PrependsAndSetsContactDate(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)

	first := store.CreateLead(context.Background(), models.LeadInput{Name: "Primeiro", Phone: "11911111111"})
	second := store.CreateLead(context.Background(), models.LeadInput{Name: "Segundo", Phone: "11922222222"})
	assert.NotNil(t, first)
	assert.NotNil(t, second)

	leads := store.Leads()
	assert.Equal(t, "Segundo", leads[0].Name)
	assert.Equal(t, "Primeiro", leads[1].Name)
	assert.WithinDuration(t, time.Now(), leads[0].ContactDate, 2*time.Second)
	assert.Equal(t, leads[0].CreatedAt, leads[0].ContactDate)
}

func TestCreateLead_RemoteFailure(t *testing.T) {
	repo := &MockRepository{}
	repo.On("InsertLead", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	store := newTestStore(repo)
	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "119"})
	assert.Nil(t, lead)
	assert.Empty(t, store.Leads())
	assert.Equal(t, "insert failed", store.Err())
}

func TestMoveLeadToStage(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)

	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "119"})
	assert.NotNil(t, lead)

	ok, err := store.MoveLeadToStage(context.Background(), lead.ID, "Visita Agendada")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Visita Agendada", store.Leads()[0].Stage)

	// Round trip: a reload from storage yields the same stage
	err = store.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Visita Agendada", store.Leads()[0].Stage)
}

func TestMoveLeadToStage_RejectsUnknownStage(t *testing.T) {
	repo := &MockRepository{}
	store := newTestStore(repo)

	ok, err := store.MoveLeadToStage(context.Background(), "some-id", "Limbo")
	assert.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "UpdateLeadStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveLeadToStage_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)
	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "119"})

	failing := &MockRepository{}
	failing.On("UpdateLeadStage", mock.Anything, lead.ID, "broker-1", "Qualificado").
		Return(nil, errors.New("write failed"))
	store.repo = failing

	ok, err := store.MoveLeadToStage(context.Background(), lead.ID, "Qualificado")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, config.DefaultStage, store.Leads()[0].Stage)
}

func TestMoveLeadToStage_LastCompletedWriteWins(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)
	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "119"})

	// Two rapid successive moves: whichever write completes last
	// determines the final state
	moved, err := store.MoveLeadToStage(context.Background(), lead.ID, "Qualificado")
	assert.NoError(t, err)
	assert.True(t, moved)
	moved, err = store.MoveLeadToStage(context.Background(), lead.ID, "Em Negociação")
	assert.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "Em Negociação", store.Leads()[0].Stage)

	err = store.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Em Negociação", store.Leads()[0].Stage)
}

func TestUpdateLead_FieldAllowList(t *testing.T) {
	repo := &MockRepository{}
	updated := &models.Lead{ID: "a", Name: "Novo Nome", Stage: "Novo Lead", UserID: "broker-1"}
	repo.On("UpdateLeadFields", mock.Anything, "a", "broker-1",
		map[string]interface{}{"name": "Novo Nome"}).Return(updated, nil)

	store := newTestStore(repo)
	lead, err := store.UpdateLead(context.Background(), "a", map[string]interface{}{
		"nome":      "Novo Nome",
		"malicious": "DROP TABLE leads",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Novo Nome", lead.Name)
	repo.AssertExpectations(t)
}

func TestDeleteLead(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)
	lead := store.CreateLead(context.Background(), models.LeadInput{Name: "Ana", Phone: "119"})

	ok, err := store.DeleteLead(context.Background(), lead.ID)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.Leads())

	// Still absent after a reload
	err = store.Load(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, store.Leads())
}

func TestMoveLeadToStage_UnknownLead(t *testing.T) {
	store := newTestStore(newFakeRepository())

	// Absent lead is not a storage failure
	ok, err := store.MoveLeadToStage(context.Background(), "ghost", "Qualificado")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteLead_UnknownLead(t *testing.T) {
	store := newTestStore(newFakeRepository())

	ok, err := store.DeleteLead(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteLead_RemoteFailure(t *testing.T) {
	repo := &MockRepository{}
	repo.On("DeleteLead", mock.Anything, "a", "broker-1").Return(errors.New("disk full"))

	store := newTestStore(repo)
	ok, err := store.DeleteLead(context.Background(), "a")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "disk full", store.Err())
}

func TestApply_InsertDeduplicates(t *testing.T) {
	store := newTestStore(newFakeRepository())
	lead := &models.Lead{ID: "a", Name: "Ana", Stage: "Novo Lead", UserID: "broker-1"}

	store.Apply(models.LeadEvent{Type: models.LeadInserted, LeadID: "a", UserID: "broker-1", Lead: lead})
	store.Apply(models.LeadEvent{Type: models.LeadInserted, LeadID: "a", UserID: "broker-1", Lead: lead})
	assert.Len(t, store.Leads(), 1)
}

func TestApply_DiscardsForeignEvents(t *testing.T) {
	store := newTestStore(newFakeRepository())
	lead := &models.Lead{ID: "a", Name: "Ana", Stage: "Novo Lead", UserID: "broker-2"}

	store.Apply(models.LeadEvent{Type: models.LeadInserted, LeadID: "a", UserID: "broker-2", Lead: lead})
	assert.Empty(t, store.Leads())
}

func TestApply_DeleteUnknownIsNoOp(t *testing.T) {
	store := newTestStore(newFakeRepository())
	assert.NotPanics(t, func() {
		store.Apply(models.LeadEvent{Type: models.LeadDeleted, LeadID: "ghost", UserID: "broker-1"})
	})
	assert.Empty(t, store.Leads())
}

func TestApply_StaleUpdateDiscarded(t *testing.T) {
	store := newTestStore(newFakeRepository())
	now := time.Now().UTC()

	current := &models.Lead{ID: "a", Name: "Ana", Stage: "Em Negociação", UserID: "broker-1", UpdatedAt: now}
	store.Apply(models.LeadEvent{Type: models.LeadInserted, LeadID: "a", UserID: "broker-1", Lead: current})

	stale := &models.Lead{ID: "a", Name: "Ana", Stage: "Novo Lead", UserID: "broker-1", UpdatedAt: now.Add(-time.Minute)}
	store.Apply(models.LeadEvent{Type: models.LeadUpdated, LeadID: "a", UserID: "broker-1", Lead: stale})

	assert.Equal(t, "Em Negociação", store.Leads()[0].Stage)

	fresh := &models.Lead{ID: "a", Name: "Ana", Stage: "Documentação", UserID: "broker-1", UpdatedAt: now.Add(time.Minute)}
	store.Apply(models.LeadEvent{Type: models.LeadUpdated, LeadID: "a", UserID: "broker-1", Lead: fresh})

	assert.Equal(t, "Documentação", store.Leads()[0].Stage)
}

func TestPipelineScenario(t *testing.T) {
	fake := newFakeRepository()
	store := newTestStore(fake)

	lead := store.CreateLead(context.Background(), models.LeadInput{
		Name:   "João Silva",
		Phone:  "11999999999",
		Source: "Facebook",
	})
	assert.NotNil(t, lead)
	assert.Equal(t, "Novo Lead", lead.Stage)

	leads := store.Leads()
	assert.Equal(t, "João Silva", leads[0].Name)
	assert.WithinDuration(t, time.Now(), leads[0].ContactDate, 2*time.Second)

	ok, err := store.MoveLeadToStage(context.Background(), lead.ID, "Qualificado")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Qualificado", store.Leads()[0].Stage)
}
