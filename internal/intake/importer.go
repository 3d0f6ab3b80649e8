package intake

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// ImportResult summarizes one spreadsheet import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// header aliases accepted in the first spreadsheet row
var headerColumns = map[string]string{
	"nome":           "name",
	"name":           "name",
	"email":          "email",
	"e-mail":         "email",
	"telefone":       "phone",
	"phone":          "phone",
	"celular":        "phone",
	"origem":         "source",
	"fonte":          "source",
	"etapa":          "stage",
	"estagio":        "stage",
	"interesse":      "interest",
	"valor":          "estimated_value",
	"valor estimado": "estimated_value",
	"observacoes":    "notes",
	"obs":            "notes",
}

// ParseLeadFile extracts leads from a .csv or .xlsx upload on behalf of
// userID. Rows missing a name or any contact info are skipped, not
// guessed at.
func ParseLeadFile(content []byte, ext, userID string) ([]*models.Lead, *ImportResult, error) {
	rows, err := readAllRows(content, ext)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file has no data rows")
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, nil, fmt.Errorf("no name column found in header")
	}

	result := &ImportResult{}
	now := time.Now().UTC()
	var leads []*models.Lead

	for i, row := range rows[1:] {
		lead := &models.Lead{
			ID:          uuid.NewString(),
			UserID:      userID,
			ContactDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for field, idx := range columns {
			if idx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[idx])
			switch field {
			case "name":
				lead.Name = value
			case "email":
				lead.Email = value
			case "phone":
				lead.Phone = value
			case "source":
				lead.Source = value
			case "stage":
				lead.Stage = value
			case "interest":
				lead.Interest = value
			case "notes":
				lead.Notes = value
			case "estimated_value":
				if value != "" {
					if v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil {
						lead.EstimatedValue = v
					}
				}
			}
		}
		lead.Stage = config.NormalizeStage(lead.Stage)

		if lead.Name == "" || (lead.Email == "" && lead.Phone == "") {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing name or contact info", i+2))
			continue
		}

		leads = append(leads, lead)
		result.Imported++
	}

	return leads, result, nil
}

func readAllRows(content []byte, ext string) ([][]string, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(content))
		r.FieldsPerRecord = -1 // allow variable columns
		return r.ReadAll()
	case ".xlsx", ".xls":
		f, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return [][]string{}, nil
		}
		rows := [][]string{}
		rs, err := f.Rows(sheets[0])
		if err != nil {
			return nil, err
		}
		for rs.Next() {
			r, err := rs.Columns()
			if err != nil {
				return nil, err
			}
			rows = append(rows, r)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if field, ok := headerColumns[key]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = i
			}
		}
	}
	return columns
}
