package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mfbrokers/internal/model"
)

// InvestmentRepository defines holding persistence operations.
type InvestmentRepository interface {
	Create(ctx context.Context, investment *model.Investment) error
	FindByUserID(ctx context.Context, userID uint) ([]model.Investment, error)
	DistinctSchemeCodes(ctx context.Context) ([]int, error)
	BulkUpdateCurrentPrices(ctx context.Context, prices map[int]decimal.Decimal) (int64, error)
}

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a new investment repository.
func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

// Create creates a new holding.
func (r *investmentRepository) Create(ctx context.Context, investment *model.Investment) error {
	return r.db.WithContext(ctx).Create(investment).Error
}

// FindByUserID returns all holdings for a user.
func (r *investmentRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Investment, error) {
	var investments []model.Investment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

// DistinctSchemeCodes returns the set of scheme codes held system-wide.
func (r *investmentRepository) DistinctSchemeCodes(ctx context.Context) ([]int, error) {
	var codes []int
	if err := r.db.WithContext(ctx).Model(&model.Investment{}).
		Distinct("scheme_code").Pluck("scheme_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// BulkUpdateCurrentPrices applies the latest prices in a single conditional
// UPDATE. Rows whose stored price already matches are left untouched, and
// holdings for schemes absent from prices keep their stale value. Returns
// the number of rows actually changed.
func (r *investmentRepository) BulkUpdateCurrentPrices(ctx context.Context, prices map[int]decimal.Decimal) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	query, args := buildBulkPriceUpdate(prices)
	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// buildBulkPriceUpdate renders one UPDATE covering every scheme in prices:
//
//	UPDATE investments SET current_price = CASE scheme_code WHEN ? THEN ? ... END
//	WHERE scheme_code IN (...) AND current_price <> CASE scheme_code ... END
//
// Holdings can number in the thousands across users sharing scheme codes;
// the batch form keeps the job at one round trip instead of one per row.
// Codes are sorted so the statement is deterministic.
func buildBulkPriceUpdate(prices map[int]decimal.Decimal) (string, []interface{}) {
	codes := make([]int, 0, len(prices))
	for code := range prices {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	caseExpr := "CASE scheme_code" + strings.Repeat(" WHEN ? THEN ?", len(codes)) + " END"
	inExpr := "(?" + strings.Repeat(",?", len(codes)-1) + ")"
	query := "UPDATE investments SET current_price = " + caseExpr +
		" WHERE scheme_code IN " + inExpr +
		" AND current_price <> " + caseExpr

	args := make([]interface{}, 0, len(codes)*5)
	for _, code := range codes {
		args = append(args, code, prices[code])
	}
	for _, code := range codes {
		args = append(args, code)
	}
	for _, code := range codes {
		args = append(args, code, prices[code])
	}
	return query, args
}
