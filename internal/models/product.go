package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. Stock must never go negative; the sale
// repository and the stock override both enforce this at write time.
// Price bounds are checked in the product service because validator
// tags cannot inspect decimal.Decimal.
type Product struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	Name     string          `json:"name" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(18,2)"`
	Stock    int             `json:"stock" validate:"gte=0,lte=100000"`
	Category string          `json:"category" gorm:"type:varchar(100)" validate:"required,max=100"`
}
