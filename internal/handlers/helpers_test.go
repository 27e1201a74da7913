package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/parser"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
	"github.com/GregMSThompson/wifi-access-backend/pkg/helpers"
)

// --- Stub services ---

type stubIngestService struct {
	result     dto.IngestResult
	manualErr  error
	review     []models.Transaction
	reviewErr  error
	lastParsed parser.Result
	lastCtx    dto.IngestContext
	lastManual dto.ManualTransactionRequest
	lastLimit  int
	calls      int
}

func (s *stubIngestService) Ingest(_ context.Context, parsed parser.Result, ic dto.IngestContext) dto.IngestResult {
	s.calls++
	s.lastParsed = parsed
	s.lastCtx = ic
	return s.result
}

func (s *stubIngestService) RecordManual(_ context.Context, req dto.ManualTransactionRequest) (dto.IngestResult, error) {
	s.calls++
	s.lastManual = req
	return s.result, s.manualErr
}

func (s *stubIngestService) PendingReview(_ context.Context, limit int) ([]models.Transaction, error) {
	s.lastLimit = limit
	return s.review, s.reviewErr
}

type stubSaleService struct {
	resp    dto.CreateSaleResponse
	err     error
	lastReq dto.CreateSaleRequest
	calls   int
}

func (s *stubSaleService) CreateSale(_ context.Context, req dto.CreateSaleRequest) (dto.CreateSaleResponse, error) {
	s.calls++
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubSaleService) Plans() []models.Plan { return models.Plans }

type stubTicketService struct {
	status   dto.TicketStatus
	export   string
	err      error
	lastCode string
}

func (s *stubTicketService) Status(_ context.Context, code string) (dto.TicketStatus, error) {
	s.lastCode = code
	return s.status, s.err
}

func (s *stubTicketService) RouterExport(_ context.Context) (string, error) {
	return s.export, s.err
}

type stubDashboardService struct {
	resp dto.DashboardResponse
	err  error
}

func (s *stubDashboardService) GetDashboard(_ context.Context) (dto.DashboardResponse, error) {
	return s.resp, s.err
}

// --- Helpers ---

func newTestDeps() *Deps {
	return &Deps{
		Log:             helpers.TestLogger(),
		ResponseHandler: response.New(helpers.TestLogger()),
		IngestSvc:       &stubIngestService{},
		SaleSvc:         &stubSaleService{},
		TicketSvc:       &stubTicketService{},
		DashboardSvc:    &stubDashboardService{},
	}
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func testRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(helpers.TestCtx())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json body %q: %v", rr.Body.String(), err)
	}
	return env
}
