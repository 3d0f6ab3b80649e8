package contracts

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"imobdesk/server/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertContractTemplate(ctx context.Context, t *models.ContractTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetContractTemplate(ctx context.Context, id string) (*models.ContractTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContractTemplate), args.Error(1)
}

func (m *MockRepository) ListContractTemplates(ctx context.Context) ([]models.ContractTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ContractTemplate), args.Error(1)
}

func (m *MockRepository) SoftDeleteContractTemplate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) InsertContract(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) GetContractsByUser(ctx context.Context, userID string) ([]models.Contract, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *MockRepository) UpdateContractStatus(ctx context.Context, id, userID, status string) error {
	args := m.Called(ctx, id, userID, status)
	return args.Error(0)
}

func (m *MockRepository) SoftDeleteContract(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) GetLeadByID(ctx context.Context, id, userID string) (*models.Lead, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockRepository) GetPropertyByID(ctx context.Context, id, userID string) (*models.Property, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func TestUploadTemplate(t *testing.T) {
	repo := &MockRepository{}
	repo.On("InsertContractTemplate", mock.Anything, mock.Anything).Return(nil)
	service := NewService(repo, logrus.New())

	template, err := service.UploadTemplate(context.Background(), "Compra e Venda",
		"Contrato entre {{nome_cliente}} (CPF {{cpf}}).")
	assert.NoError(t, err)
	assert.NotEmpty(t, template.ID)

	// No placeholders is rejected before storage
	_, err = service.UploadTemplate(context.Background(), "Vazio", "texto puro")
	assert.Error(t, err)

	_, err = service.UploadTemplate(context.Background(), "  ", "{{nome_cliente}}")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	repo := &MockRepository{}
	repo.On("GetContractTemplate", mock.Anything, "tpl-1").Return(&models.ContractTemplate{
		ID:      "tpl-1",
		Name:    "Compra e Venda",
		Content: "Contrato entre {{nome_cliente}}, CPF {{cpf}}, telefone {{telefone}}.",
	}, nil)
	repo.On("GetLeadByID", mock.Anything, "lead-1", "broker-1").Return(&models.Lead{
		ID:    "lead-1",
		Name:  "João Silva",
		CPF:   "123.456.789-00",
		Phone: "11999999999",
	}, nil)
	repo.On("InsertContract", mock.Anything, mock.Anything).Return(nil)

	service := NewService(repo, logrus.New())
	contract, err := service.Generate(context.Background(), "tpl-1", "lead-1", "broker-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Contrato entre João Silva, CPF 123.456.789-00, telefone 11999999999.", contract.Content)
	assert.Equal(t, models.ContractDraft, contract.Status)
	assert.Equal(t, "Compra e Venda - João Silva", contract.Title)
}

func TestGenerate_MissingValueFailsWhole(t *testing.T) {
	repo := &MockRepository{}
	repo.On("GetContractTemplate", mock.Anything, "tpl-1").Return(&models.ContractTemplate{
		ID:      "tpl-1",
		Name:    "Compra e Venda",
		Content: "Contrato entre {{nome_cliente}}, CPF {{cpf}}.",
	}, nil)
	repo.On("GetLeadByID", mock.Anything, "lead-1", "broker-1").Return(&models.Lead{
		ID:   "lead-1",
		Name: "João Silva", // no CPF on file
	}, nil)

	service := NewService(repo, logrus.New())
	_, err := service.Generate(context.Background(), "tpl-1", "lead-1", "broker-1", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cpf")

	// Nothing was persisted
	repo.AssertNotCalled(t, "InsertContract", mock.Anything, mock.Anything)
}

func TestGenerate_WithProperty(t *testing.T) {
	propertyID := "prop-1"
	repo := &MockRepository{}
	repo.On("GetContractTemplate", mock.Anything, "tpl-1").Return(&models.ContractTemplate{
		ID:      "tpl-1",
		Name:    "Reserva",
		Content: "{{nome_cliente}} reserva o imóvel {{titulo_imovel}} por {{valor_imovel}}.",
	}, nil)
	repo.On("GetLeadByID", mock.Anything, "lead-1", "broker-1").Return(&models.Lead{
		ID: "lead-1", Name: "Maria", Phone: "119",
	}, nil)
	repo.On("GetPropertyByID", mock.Anything, "prop-1", "broker-1").Return(&models.Property{
		ID: "prop-1", Title: "Apto 32 Jardins", Price: 850000,
	}, nil)
	repo.On("InsertContract", mock.Anything, mock.Anything).Return(nil)

	service := NewService(repo, logrus.New())
	contract, err := service.Generate(context.Background(), "tpl-1", "lead-1", "broker-1", &propertyID)
	assert.NoError(t, err)
	assert.Equal(t, "Maria reserva o imóvel Apto 32 Jardins por R$ 850000.00.", contract.Content)
}

func TestMerge_UnknownPlaceholder(t *testing.T) {
	_, err := merge("Olá {{campo_inexistente}}", map[string]string{"nome_cliente": "x"})
	assert.Error(t, err)
}
