package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a product row. SKU holds the encrypted value when the
// struct crosses the repository boundary and the plaintext everywhere else.
type Product struct {
	ProductID   int64           `json:"product_id" db:"product_id"`
	SKU         string          `json:"sku" db:"sku"`
	ProductName string          `json:"product_name" db:"product_name"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Category represents a product category
type Category struct {
	CategoryID   int64  `json:"category_id" db:"category_id"`
	CategoryName string `json:"category_name" db:"category_name"`
}

// Material represents a material a product can be made of
type Material struct {
	MaterialID   int64  `json:"material_id" db:"material_id"`
	MaterialName string `json:"material_name" db:"material_name"`
}

// ProductView is the denormalized list representation: materials by name,
// media as a flat set of URLs.
type ProductView struct {
	ProductID    int64           `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Materials    []string        `json:"materials"`
	ImageURLs    []string        `json:"image_urls"`
}

// ProductDetail is the by-id representation: materials by id, plus the raw
// category id so clients can round-trip it into an edit request.
type ProductDetail struct {
	ProductID    int64           `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	MaterialIDs  []int64         `json:"materials"`
	ImageURLs    []string        `json:"image_urls"`
}

// CategoryMaxPrice is one row of the highest-price-per-category statistic
type CategoryMaxPrice struct {
	CategoryName string          `json:"category_name"`
	HighestPrice decimal.Decimal `json:"highest_price"`
}

// PriceRangeCount is one bucket of the price histogram
type PriceRangeCount struct {
	PriceRange   string `json:"price_range"`
	ProductCount int64  `json:"product_count"`
}

// ProductIDName identifies a product in statistics listings
type ProductIDName struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
}
