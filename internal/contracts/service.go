// Package contracts manages uploaded contract templates and merges them
// against lead and property data.
package contracts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

// Repository is the storage surface the service depends on
type Repository interface {
	InsertContractTemplate(ctx context.Context, t *models.ContractTemplate) error
	GetContractTemplate(ctx context.Context, id string) (*models.ContractTemplate, error)
	ListContractTemplates(ctx context.Context) ([]models.ContractTemplate, error)
	SoftDeleteContractTemplate(ctx context.Context, id string) error
	InsertContract(ctx context.Context, c *models.Contract) error
	GetContractsByUser(ctx context.Context, userID string) ([]models.Contract, error)
	UpdateContractStatus(ctx context.Context, id, userID, status string) error
	SoftDeleteContract(ctx context.Context, id, userID string) error
	GetLeadByID(ctx context.Context, id, userID string) (*models.Lead, error)
	GetPropertyByID(ctx context.Context, id, userID string) (*models.Property, error)
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

type Service struct {
	repo   Repository
	logger *logrus.Logger
}

func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// UploadTemplate validates and stores a template. It must contain at
// least one placeholder, otherwise merging it would be pointless.
func (s *Service) UploadTemplate(ctx context.Context, name, content string) (*models.ContractTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if !placeholderPattern.MatchString(content) {
		return nil, fmt.Errorf("template has no {{placeholder}} fields")
	}

	template := &models.ContractTemplate{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertContractTemplate(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Generate merges a template against a lead (and optional property) and
// persists the result. A placeholder with no value fails the whole
// merge; no partial contract is ever stored.
func (s *Service) Generate(ctx context.Context, templateID, leadID, userID string, propertyID *string) (*models.Contract, error) {
	template, err := s.repo.GetContractTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("contract template not found: %s", templateID)
	}

	lead, err := s.repo.GetLeadByID(ctx, leadID, userID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, fmt.Errorf("lead not found: %s", leadID)
	}

	values := leadValues(lead)
	if propertyID != nil {
		property, err := s.repo.GetPropertyByID(ctx, *propertyID, userID)
		if err != nil {
			return nil, err
		}
		if property == nil {
			return nil, fmt.Errorf("property not found: %s", *propertyID)
		}
		propertyValues(property, values)
	}

	content, err := merge(template.Content, values)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	contract := &models.Contract{
		ID:         uuid.NewString(),
		TemplateID: template.ID,
		LeadID:     lead.ID,
		PropertyID: propertyID,
		Title:      fmt.Sprintf("%s - %s", template.Name, lead.Name),
		Content:    content,
		Status:     models.ContractDraft,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertContract(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// merge substitutes every placeholder, failing on the first one without
// a value
func merge(template string, values map[string]string) (string, error) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := values[key]
		if !ok || value == "" {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template fields without values: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

func leadValues(lead *models.Lead) map[string]string {
	return map[string]string{
		"nome_cliente":   lead.Name,
		"email_cliente":  lead.Email,
		"telefone":       lead.Phone,
		"endereco":       lead.Address,
		"estado_civil":   lead.MaritalStatus,
		"cpf":            lead.CPF,
		"valor_estimado": formatCurrency(lead.EstimatedValue),
		"data_atual":     time.Now().Format("02/01/2006"),
		"nome_corretor":  lead.BrokerName,
	}
}

func propertyValues(p *models.Property, values map[string]string) {
	values["titulo_imovel"] = p.Title
	values["endereco_imovel"] = strings.TrimSpace(fmt.Sprintf("%s, %s - %s", p.Street, p.Neighborhood, p.City))
	values["valor_imovel"] = formatCurrency(float64(p.Price))
}

func formatCurrency(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("R$ %.2f", v)
}
