package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
)

type TicketService interface {
	Status(ctx context.Context, code string) (dto.TicketStatus, error)
	RouterExport(ctx context.Context) (string, error)
}

type ticketHandlers struct {
	ResponseHandler response.ResponseHandler
	TicketSvc       TicketService
}

func NewTicketHandlers(deps *Deps) *ticketHandlers {
	return &ticketHandlers{
		ResponseHandler: deps.ResponseHandler,
		TicketSvc:       deps.TicketSvc,
	}
}

func (h *ticketHandlers) TicketRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{code}", h.GetStatus)
	return r
}

// RouterRoutes is mounted behind the router key middleware.
func (h *ticketHandlers) RouterRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/tickets", h.RouterExport)
	return r
}

func (h *ticketHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.TicketSvc.Status(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, status)
}

func (h *ticketHandlers) RouterExport(w http.ResponseWriter, r *http.Request) {
	body, err := h.TicketSvc.RouterExport(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteText(w, r, http.StatusOK, body)
}
