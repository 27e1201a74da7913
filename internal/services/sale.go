package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

const saleCodeAttempts = 3

// saleSSStore claims the payment and stores the sale atomically.
type saleSSStore interface {
	Reconcile(ctx context.Context, sale *models.Sale) error
}

type saleEncrypter interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

type saleService struct {
	store   saleSSStore
	cipher  saleEncrypter
	newCode func() (string, error)
}

func NewSaleService(store saleSSStore, cipher saleEncrypter) *saleService {
	return &saleService{
		store:   store,
		cipher:  cipher,
		newCode: generateAccessCode,
	}
}

func (s *saleService) Plans() []models.Plan {
	return models.Plans
}

// CreateSale reconciles a buyer's reference against a stored payment and
// issues an access code for the chosen plan.
func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (dto.CreateSaleResponse, error) {
	log := logger.FromContext(ctx)

	req.Reference = strings.TrimSpace(req.Reference)
	req.Name = strings.TrimSpace(req.Name)
	req.IDNumber = strings.TrimSpace(req.IDNumber)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Reference == "" || req.Name == "" || req.IDNumber == "" || req.Phone == "" {
		return dto.CreateSaleResponse{}, errs.NewValidationError("reference, name, idNumber and phone are required")
	}
	plan, ok := models.PlanByID(req.PlanID)
	if !ok {
		return dto.CreateSaleResponse{}, errs.NewValidationError("unknown plan")
	}

	idNumber, err := s.cipher.Encrypt(ctx, req.IDNumber)
	if err != nil {
		log.Error("failed to encrypt id number", "error", err)
		return dto.CreateSaleResponse{}, err
	}
	phone, err := s.cipher.Encrypt(ctx, req.Phone)
	if err != nil {
		log.Error("failed to encrypt phone", "error", err)
		return dto.CreateSaleResponse{}, err
	}

	sale := &models.Sale{
		Reference:       req.Reference,
		ClientName:      req.Name,
		ClientIDNumber:  idNumber,
		ClientPhone:     phone,
		PlanID:          plan.ID,
		PlanName:        plan.Title,
		RouterProfile:   plan.RouterProfile,
		PricePaid:       plan.PriceUSD,
		DurationMinutes: plan.DurationMinutes(),
	}

	for attempt := 1; attempt <= saleCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return dto.CreateSaleResponse{}, err
		}
		sale.SaleID = uuid.NewString()
		sale.AccessCode = strings.ToUpper(code)

		err = s.store.Reconcile(ctx, sale)
		if errors.Is(err, errs.ErrAccessCodeTaken) {
			log.Warn("access code collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			log.Warn("sale reconciliation failed", "reference", sale.Reference, "error", err)
			return dto.CreateSaleResponse{}, err
		}

		log.Info("sale created", "reference", sale.Reference, "plan_id", plan.ID,
			"amount_received", sale.AmountReceived.StringFixed(2))
		return dto.CreateSaleResponse{
			Code:            sale.AccessCode,
			DurationMinutes: sale.DurationMinutes,
			CreatedAt:       sale.CreatedAt,
			Plan:            plan,
		}, nil
	}

	return dto.CreateSaleResponse{}, errs.NewUnavailableError("reconcile", "could not allocate a unique access code", nil)
}
