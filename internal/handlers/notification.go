package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/parser"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
)

const (
	fieldTitle = "TituloNotificacion"
	fieldBody  = "TextoNotificacion"
)

type IngestService interface {
	Ingest(ctx context.Context, parsed parser.Result, ic dto.IngestContext) dto.IngestResult
	RecordManual(ctx context.Context, req dto.ManualTransactionRequest) (dto.IngestResult, error)
	PendingReview(ctx context.Context, limit int) ([]models.Transaction, error)
}

type notificationHandlers struct {
	ResponseHandler response.ResponseHandler
	IngestSvc       IngestService
}

func NewNotificationHandlers(deps *Deps) *notificationHandlers {
	return &notificationHandlers{
		ResponseHandler: deps.ResponseHandler,
		IngestSvc:       deps.IngestSvc,
	}
}

func (h *notificationHandlers) NotificationRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Receive)
	r.Post("/", h.Receive)
	return r
}

// Receive accepts one forwarded notification as form fields, query
// parameters or a JSON object. Every stored record answers 200 so the
// forwarder stops retrying, including unrecognized ones.
func (h *notificationHandlers) Receive(w http.ResponseWriter, r *http.Request) {
	title, body, err := notificationFields(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	parsed := parser.Parse(title, body)
	res := h.IngestSvc.Ingest(r.Context(), parsed, dto.IngestContext{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Title:     title,
		Body:      body,
	})
	writeIngestResult(h.ResponseHandler, w, r, res, parsed.Recognized, parsed)
}

func writeIngestResult(rh response.ResponseHandler, w http.ResponseWriter, r *http.Request, res dto.IngestResult, recognized bool, parsed any) {
	switch res.Outcome {
	case dto.IngestStored:
		rh.WriteSuccess(w, r, http.StatusOK, dto.NotificationResponse{
			Reference:   res.Record.Reference,
			Recognized:  recognized,
			NeedsReview: res.Record.NeedsReview,
			Parsed:      parsed,
		})
	case dto.IngestDuplicateReference:
		rh.HandleError(w, r, errs.NewDuplicateReferenceError(res.Record.Reference))
	default:
		rh.HandleError(w, r, errs.NewUnavailableError("ingest",
			fmt.Sprintf("transaction not persisted after %d attempts", res.Attempts), res.Err))
	}
}

func notificationFields(r *http.Request) (string, string, error) {
	var title, body string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if r.Method == http.MethodPost && mediaType == "application/json" {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", "", errs.NewValidationError("invalid JSON body")
		}
		title, body = payload[fieldTitle], payload[fieldBody]
	} else {
		title, body = r.FormValue(fieldTitle), r.FormValue(fieldBody)
	}

	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return "", "", errs.NewValidationError(fieldTitle + " and " + fieldBody + " are required")
	}
	return title, body, nil
}

// clientIP reads RemoteAddr, which chi's RealIP has already rewritten when a
// proxy header was present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
