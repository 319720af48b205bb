package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment represents a mutual fund holding owned by a single user.
// CurrentPrice is mutated only by the price sync job; users never write it.
type Investment struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	UserID           uint            `json:"user_id" gorm:"not null;index"`
	SchemeCode       int             `json:"scheme_code" gorm:"not null;index"`
	SchemeName       string          `json:"scheme_name" gorm:"size:255;not null"`
	Units            int             `json:"units" gorm:"not null"`
	BuyPrice         decimal.Decimal `json:"buy_price" gorm:"type:decimal(10,4);not null"`
	CurrentPrice     decimal.Decimal `json:"current_price" gorm:"type:decimal(10,4);not null"`
	TransactionDate  time.Time       `json:"transaction_date" gorm:"type:date"`
	MutualFundFamily string          `json:"mutual_fund_family" gorm:"size:255"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ProfitLoss returns (current_price - buy_price) * units. Derived at read
// time, never stored.
func (i *Investment) ProfitLoss() decimal.Decimal {
	return i.CurrentPrice.Sub(i.BuyPrice).Mul(decimal.NewFromInt(int64(i.Units)))
}
