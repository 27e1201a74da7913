package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionUsed    TransactionStatus = "used"
)

// Review reasons attached to records that need a human before they can be sold against.
const (
	ReviewUnrecognizedFormat = "unrecognized_format"
	ReviewAmbiguousAmount    = "ambiguous_amount"
)

// Transaction is one incoming payment, keyed by the bank reference.
type Transaction struct {
	Reference    string            `json:"reference"`
	Amount       decimal.Decimal   `json:"amount"`
	BankOrigin   string            `json:"bankOrigin"`
	Status       TransactionStatus `json:"status"`
	NeedsReview  bool              `json:"needsReview"`
	ReviewReason string            `json:"reviewReason,omitempty"`
	RawPayload   json.RawMessage   `json:"rawPayload,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"` // assigned by the store
	UsedAt       *time.Time        `json:"usedAt,omitempty"`
}
