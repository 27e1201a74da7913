package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
)

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (dto.CreateSaleResponse, error)
	Plans() []models.Plan
}

type saleHandlers struct {
	ResponseHandler response.ResponseHandler
	SaleSvc         SaleService
}

func NewSaleHandlers(deps *Deps) *saleHandlers {
	return &saleHandlers{
		ResponseHandler: deps.ResponseHandler,
		SaleSvc:         deps.SaleSvc,
	}
}

func (h *saleHandlers) SaleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSale)
	r.Get("/plans", h.ListPlans)
	return r
}

func (h *saleHandlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid JSON body"))
		return
	}

	resp, err := h.SaleSvc.CreateSale(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, resp)
}

func (h *saleHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.SaleSvc.Plans())
}
