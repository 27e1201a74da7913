package dto

import (
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

// IngestContext is the request metadata stored next to the parsed result.
type IngestContext struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

type IngestOutcome string

const (
	IngestStored             IngestOutcome = "stored"
	IngestDuplicateReference IngestOutcome = "duplicate_reference"
	IngestPersistenceFailed  IngestOutcome = "persistence_failed"
)

type IngestResult struct {
	Outcome  IngestOutcome
	Record   *models.Transaction
	Attempts int
	Err      error // detail for IngestPersistenceFailed
}

type NotificationResponse struct {
	Reference   string `json:"reference"`
	Recognized  bool   `json:"recognized"`
	NeedsReview bool   `json:"needsReview"`
	Parsed      any    `json:"parsed"`
}

type ManualTransactionRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Bank      string `json:"bank,omitempty"`
}
