package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "mfbrokers/internal/errors"
	"mfbrokers/internal/mfapi"
	"mfbrokers/internal/model"
	"mfbrokers/internal/repository"
)

// PortfolioEntry is one holding with its derived profit/loss.
type PortfolioEntry struct {
	SchemeCode       int             `json:"scheme_code"`
	SchemeName       string          `json:"scheme_name"`
	Units            int             `json:"units"`
	BuyPrice         decimal.Decimal `json:"buy_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	TransactionDate  time.Time       `json:"transaction_date"`
	MutualFundFamily string          `json:"mutual_fund_family"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
}

// Portfolio is a user's holdings plus the total profit/loss across them.
type Portfolio struct {
	Investments     []PortfolioEntry `json:"investments"`
	TotalProfitLoss decimal.Decimal  `json:"total_profit_loss"`
}

// InvestmentService handles holdings and scheme lookups.
type InvestmentService interface {
	List(ctx context.Context, userID uint) (*Portfolio, error)
	Create(ctx context.Context, userID uint, schemeCode, units int) (*model.Investment, error)
	SchemesByFamily(ctx context.Context, family string) ([]mfapi.Scheme, error)
}

type investmentService struct {
	investments repository.InvestmentRepository
	fundAPI     mfapi.ClientInterface
	logger      *zap.Logger
}

// NewInvestmentService creates a new investment service.
func NewInvestmentService(
	investments repository.InvestmentRepository,
	fundAPI mfapi.ClientInterface,
	logger *zap.Logger,
) InvestmentService {
	return &investmentService{
		investments: investments,
		fundAPI:     fundAPI,
		logger:      logger,
	}
}

// List returns all holdings for the user with per-row and total
// profit/loss. A user with no holdings gets an empty list and a zero total.
func (s *investmentService) List(ctx context.Context, userID uint) (*Portfolio, error) {
	investments, err := s.investments.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	portfolio := &Portfolio{
		Investments:     make([]PortfolioEntry, 0, len(investments)),
		TotalProfitLoss: decimal.Zero,
	}
	for i := range investments {
		inv := &investments[i]
		profitLoss := inv.ProfitLoss()
		portfolio.Investments = append(portfolio.Investments, PortfolioEntry{
			SchemeCode:       inv.SchemeCode,
			SchemeName:       inv.SchemeName,
			Units:            inv.Units,
			BuyPrice:         inv.BuyPrice,
			CurrentPrice:     inv.CurrentPrice,
			TransactionDate:  inv.TransactionDate,
			MutualFundFamily: inv.MutualFundFamily,
			ProfitLoss:       profitLoss,
		})
		portfolio.TotalProfitLoss = portfolio.TotalProfitLoss.Add(profitLoss)
	}
	return portfolio, nil
}

// Create buys units of a scheme. The unit count is validated before any
// external call; the scheme name and fund family are taken from the API
// response, and the fetched NAV seeds both buy and current price.
func (s *investmentService) Create(ctx context.Context, userID uint, schemeCode, units int) (*model.Investment, error) {
	if units <= 0 {
		return nil, apperrors.ErrInvalidUnits
	}

	schemes, err := s.fundAPI.SchemesByCodes(ctx, []int{schemeCode})
	if err != nil {
		return nil, err
	}
	var match *mfapi.Scheme
	for i := range schemes {
		if schemes[i].SchemeCode == schemeCode {
			match = &schemes[i]
			break
		}
	}
	if match == nil {
		return nil, apperrors.ErrSchemeNotFound
	}

	nav := match.NAV()
	investment := &model.Investment{
		UserID:           userID,
		SchemeCode:       schemeCode,
		SchemeName:       match.SchemeName,
		Units:            units,
		BuyPrice:         nav,
		CurrentPrice:     nav,
		TransactionDate:  time.Now().UTC().Truncate(24 * time.Hour),
		MutualFundFamily: match.MutualFundFamily,
	}
	if err := s.investments.Create(ctx, investment); err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	s.logger.Info("investment created",
		zap.Uint("user_id", userID),
		zap.Int("scheme_code", schemeCode),
		zap.Int("units", units))
	return investment, nil
}

// SchemesByFamily proxies the upstream listing of open-ended schemes for a
// fund family.
func (s *investmentService) SchemesByFamily(ctx context.Context, family string) ([]mfapi.Scheme, error) {
	return s.fundAPI.SchemesByFamily(ctx, family)
}
