package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		clientName  string
		eventType   string
		needsReview bool
	}{
		{
			name:        "Well formed",
			description: "Cliente: João Silva - Visita",
			clientName:  "João Silva",
			eventType:   "Visita",
		},
		{
			name:        "Extra whitespace",
			description: "Cliente:   Maria Souza   -   Assinatura de contrato",
			clientName:  "Maria Souza",
			eventType:   "Assinatura de contrato",
		},
		{
			name:        "Hyphenated event type",
			description: "Cliente: Ana Lima - Pré-visita",
			clientName:  "Ana Lima",
			eventType:   "Pré-visita",
		},
		{
			name:        "Missing prefix fails closed",
			description: "Reunião com João",
			needsReview: true,
		},
		{
			name:        "Empty description fails closed",
			description: "",
			needsReview: true,
		},
		{
			name:        "Prefix without type fails closed",
			description: "Cliente: João Silva",
			needsReview: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseDescription(tt.description)
			assert.Equal(t, tt.needsReview, parsed.NeedsReview)
			assert.Equal(t, tt.clientName, parsed.ClientName)
			assert.Equal(t, tt.eventType, parsed.EventType)
		})
	}
}
