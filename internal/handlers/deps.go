package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/wifi-access-backend/internal/middleware"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	IngestSvc       IngestService
	SaleSvc         SaleService
	TicketSvc       TicketService
	DashboardSvc    DashboardService
	Auth            *middleware.Middleware
	RouterSecret    string
}
