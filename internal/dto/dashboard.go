package dto

import (
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

type DashboardSale struct {
	models.Sale
	RemainingSeconds int64 `json:"remainingSeconds"`
	Active           bool  `json:"active"`
}

type DashboardResponse struct {
	SalesToday      int             `json:"salesToday"`
	RevenueTodayUSD decimal.Decimal `json:"revenueTodayUsd"`
	ActiveNow       int             `json:"activeNow"`
	Sales           []DashboardSale `json:"sales"`
}
