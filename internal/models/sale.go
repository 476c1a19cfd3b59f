package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a committed transaction: products sold, quantities and the
// computed total. Date and UserID are set server-side, never taken from
// the request body. A sale is immutable once committed except for full
// deletion, which restores the referenced products' stock.
type Sale struct {
	ID     uint            `json:"id" gorm:"primaryKey"`
	Date   time.Time       `json:"date"`
	Total  decimal.Decimal `json:"total" gorm:"type:decimal(18,2)"`
	UserID uint            `json:"user_id"`
	User   *User           `json:"user,omitempty"`
	Items  []SaleItem      `json:"items"`
}

// SaleItem is one product+quantity entry within a sale. UnitPrice is the
// product's price captured at transaction time; later catalog edits must
// not change the value of committed sales.
type SaleItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity" validate:"required,gte=1,lte=1000"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,2)"`
	Product   *Product        `json:"product,omitempty"`
}

// Subtotal is derived, not stored.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleLine is one requested product+quantity pair in a sale request.
type SaleLine struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1,lte=1000"`
}
