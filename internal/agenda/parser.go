package agenda

import (
	"regexp"
	"strings"
)

// The calendar service encodes client and visit type into the free-text
// event description. Version 1 of the contract is the exact form
// "Cliente: <name> - <type>". Descriptions outside the contract are NOT
// guessed at: the event comes back flagged for manual review.
const descriptionContractVersion = 1

var descriptionPattern = regexp.MustCompile(`^Cliente:\s*(.+?)\s*-\s*(.+)$`)

// ParsedDescription is the structured form of an event description
type ParsedDescription struct {
	ClientName  string
	EventType   string
	NeedsReview bool
}

// ParseDescription extracts the client name and event type from an
// event description, failing closed when the text does not match the
// expected contract
func ParseDescription(description string) ParsedDescription {
	description = strings.TrimSpace(description)
	if description == "" {
		return ParsedDescription{NeedsReview: true}
	}

	match := descriptionPattern.FindStringSubmatch(description)
	if match == nil {
		return ParsedDescription{NeedsReview: true}
	}

	return ParsedDescription{
		ClientName: match[1],
		EventType:  match[2],
	}
}
