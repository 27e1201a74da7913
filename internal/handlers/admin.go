package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) (dto.DashboardResponse, error)
}

type adminHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	IngestSvc       IngestService
}

func NewAdminHandlers(deps *Deps) *adminHandlers {
	return &adminHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
		IngestSvc:       deps.IngestSvc,
	}
}

func (h *adminHandlers) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.GetDashboard)
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.ReportTransaction)
		r.Get("/review", h.ListForReview)
	})
	return r
}

func (h *adminHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.DashboardSvc.GetDashboard(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

// ReportTransaction records a payment an operator saw in the bank app but
// that never arrived as a notification.
func (h *adminHandlers) ReportTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.ManualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid JSON body"))
		return
	}

	res, err := h.IngestSvc.RecordManual(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	writeIngestResult(h.ResponseHandler, w, r, res, true, nil)
}

func (h *adminHandlers) ListForReview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("limit must be a number"))
			return
		}
		limit = n
	}

	txs, err := h.IngestSvc.PendingReview(r.Context(), limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, txs)
}
