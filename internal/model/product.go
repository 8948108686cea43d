package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a clothing item in the catalogue.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Images      []string        `json:"images" db:"images"`
	Colors      []ColorVariant  `json:"colors"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// ColorVariant holds the stock level of one color of a product.
type ColorVariant struct {
	Color    string `json:"color" db:"color" validate:"required,notblank,max=64"`
	Quantity int    `json:"quantity" db:"quantity" validate:"gte=0,lte=2147483647"`
}

// Variant returns the color variant with the given name.
func (p *Product) Variant(color string) (ColorVariant, bool) {
	for _, c := range p.Colors {
		if c.Color == color {
			return c, true
		}
	}
	return ColorVariant{}, false
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,notblank,max=255"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Category    string          `json:"category" validate:"required,notblank,max=100"`
	Description string          `json:"description" validate:"max=5000"`
	Images      []string        `json:"images" validate:"dive,required,max=2048"`
	Colors      []ColorVariant  `json:"colors" validate:"required,min=1,dive"`
}

// UpdateProductRequest changes the fields that are present. Colors, when
// given, replace the whole variant list including stock levels.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,money"`
	Category    *string          `json:"category" validate:"omitempty,notblank,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Images      []string         `json:"images" validate:"omitempty,dive,required,max=2048"`
	Colors      []ColorVariant   `json:"colors" validate:"omitempty,min=1,dive"`
}

// ProductPage is a page of products returned by the catalogue listing.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
