package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/ticket"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

const routerExportEmpty = "none"

type saleTSStore interface {
	GetByCode(ctx context.Context, code string) (*models.Sale, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.Sale, error)
}

type ticketService struct {
	store    saleTSStore
	clockNow func() time.Time
}

func NewTicketService(store saleTSStore) *ticketService {
	return &ticketService{store: store, clockNow: time.Now}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ticketOf(s *models.Sale) ticket.Ticket {
	return ticket.Ticket{Code: s.AccessCode, CreatedAt: s.CreatedAt, DurationMinutes: s.DurationMinutes}
}

// Status evaluates the ticket at request time. Nothing derived is stored.
func (s *ticketService) Status(ctx context.Context, code string) (dto.TicketStatus, error) {
	code = NormalizeCode(code)
	if code == "" {
		return dto.TicketStatus{}, errs.NewValidationError("code is required")
	}
	sale, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return dto.TicketStatus{}, err
	}

	v := ticket.Evaluate(ticketOf(sale), s.clockNow())
	return dto.TicketStatus{
		Code:             sale.AccessCode,
		CreatedAt:        sale.CreatedAt,
		DurationMinutes:  sale.DurationMinutes,
		ExpiresAt:        v.ExpiresAt,
		RemainingSeconds: v.RemainingSeconds,
		Active:           v.Active,
		PercentRemaining: v.PercentRemaining,
	}, nil
}

// RouterExport lists every active code with its hotspot profile as
// "code,profile;code,profile", or "none" when nothing is active.
func (s *ticketService) RouterExport(ctx context.Context) (string, error) {
	now := s.clockNow()
	sales, err := s.store.ListSince(ctx, now.Add(-models.LongestPlan()))
	if err != nil {
		return "", err
	}

	entries := make([]string, 0, len(sales))
	for _, sale := range sales {
		if !ticket.Evaluate(ticketOf(sale), now).Active {
			continue
		}
		entries = append(entries, sale.AccessCode+","+sale.RouterProfile)
	}
	logger.FromContext(ctx).Debug("router export", "active", len(entries), "candidates", len(sales))

	if len(entries) == 0 {
		return routerExportEmpty, nil
	}
	return strings.Join(entries, ";"), nil
}
