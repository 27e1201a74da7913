package dto

import (
	"time"

	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

type CreateSaleRequest struct {
	Reference string `json:"reference"`
	IDNumber  string `json:"idNumber"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	PlanID    int    `json:"planId"`
}

type CreateSaleResponse struct {
	Code            string      `json:"code"`
	DurationMinutes int         `json:"durationMinutes"`
	CreatedAt       time.Time   `json:"createdAt"`
	Plan            models.Plan `json:"plan"`
}

type TicketStatus struct {
	Code             string    `json:"code"`
	CreatedAt        time.Time `json:"createdAt"`
	DurationMinutes  int       `json:"durationMinutes"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	Active           bool      `json:"active"`
	PercentRemaining float64   `json:"percentRemaining"`
}
