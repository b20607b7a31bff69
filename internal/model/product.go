package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a discounted catalogue item owned by a retailer. Checkout only
// reads the id and current price; everything else belongs to the catalogue
// service.
type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	OriginalPrice decimal.Decimal `json:"original_price" db:"original_price"`
	Category      string          `json:"category" db:"category"`
	Retailer      string          `json:"retailer" db:"retailer"`
	ExpiryDate    time.Time       `json:"expiry_date" db:"expiry_date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
