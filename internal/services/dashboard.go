package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/ticket"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

const dashboardWindow = 24 * time.Hour

type dashboardDecrypter interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type dashboardService struct {
	store    saleTSStore
	cipher   dashboardDecrypter
	location *time.Location
	clockNow func() time.Time
}

func NewDashboardService(store saleTSStore, cipher dashboardDecrypter, location *time.Location) *dashboardService {
	if location == nil {
		location = time.UTC
	}
	return &dashboardService{
		store:    store,
		cipher:   cipher,
		location: location,
		clockNow: time.Now,
	}
}

// GetDashboard returns the sales of the last 24 hours, newest first, with
// their live validity. "Today" starts at local midnight.
func (s *dashboardService) GetDashboard(ctx context.Context) (dto.DashboardResponse, error) {
	log := logger.FromContext(ctx)
	now := s.clockNow()

	sales, err := s.store.ListSince(ctx, now.Add(-dashboardWindow))
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	local := now.In(s.location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)

	resp := dto.DashboardResponse{
		RevenueTodayUSD: decimal.Zero,
		Sales:           make([]dto.DashboardSale, 0, len(sales)),
	}
	for _, sale := range sales {
		v := ticket.Evaluate(ticketOf(sale), now)
		if v.Active {
			resp.ActiveNow++
		}
		if !sale.CreatedAt.Before(midnight) {
			resp.SalesToday++
			resp.RevenueTodayUSD = resp.RevenueTodayUSD.Add(sale.PricePaid)
		}

		row := dto.DashboardSale{Sale: *sale, RemainingSeconds: v.RemainingSeconds, Active: v.Active}
		phone, err := s.cipher.Decrypt(ctx, sale.ClientPhone)
		if err != nil {
			log.Warn("failed to decrypt client phone", "sale_id", sale.SaleID, "error", err)
			phone = ""
		}
		row.ClientPhone = phone
		row.ClientIDNumber = ""
		resp.Sales = append(resp.Sales, row)
	}
	return resp, nil
}
