package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an issued access ticket together with the buyer and the payment it consumed.
// ClientIDNumber and ClientPhone hold ciphertext when a KMS key is configured.
type Sale struct {
	SaleID          string          `json:"saleId"`
	Reference       string          `json:"reference"`
	ClientName      string          `json:"clientName"`
	ClientIDNumber  string          `json:"-"`
	ClientPhone     string          `json:"clientPhone"`
	PlanID          int             `json:"planId"`
	PlanName        string          `json:"planName"`
	RouterProfile   string          `json:"routerProfile"`
	PricePaid       decimal.Decimal `json:"pricePaid"`
	AmountReceived  decimal.Decimal `json:"amountReceived"`
	AccessCode      string          `json:"accessCode"`
	DurationMinutes int             `json:"durationMinutes"`
	CreatedAt       time.Time       `json:"createdAt"`
}
