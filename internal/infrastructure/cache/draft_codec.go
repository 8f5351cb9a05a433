package cache

import (
	"encoding/json"
	"fmt"

	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
)

// DefaultDraftKeyPrefix is used when no key prefix is configured
const DefaultDraftKeyPrefix = "taxinvoice:draft:"

// draftKey builds the storage key of a session draft
func draftKey(prefix string, tenantID, taxInvoiceID uuid.UUID) string {
	return prefix + tenantID.String() + ":" + taxInvoiceID.String()
}

// encodeDraft serializes a snapshot so stored drafts never share memory with live sessions
func encodeDraft(snap taxinvoice.SessionSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}
	return data, nil
}

func decodeDraft(data []byte) (*taxinvoice.SessionSnapshot, error) {
	var snap taxinvoice.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &snap, nil
}
