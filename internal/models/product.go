package models

import (
	"encoding/json"
	"time"
)

// ProductStatus represents the moderation status of a product
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

// DefaultRestockQuantity is assigned when an admin approves a product whose
// stock is zero, so approval never publishes an unbuyable listing.
const DefaultRestockQuantity = 50

// Product represents an item owned by exactly one store.
// InStock must always equal StockQuantity > 0; every write path re-derives it.
type Product struct {
	ID            string        `json:"id" db:"id"`
	StoreID       string        `json:"storeId" db:"store_id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	Category      string        `json:"category" db:"category"`
	MRP           float64       `json:"mrp" db:"mrp"`
	Price         float64       `json:"price" db:"price"`
	Images        []string      `json:"images" db:"images"`
	StockQuantity int           `json:"stockQuantity" db:"stock_quantity"`
	InStock       bool          `json:"inStock" db:"in_stock"`
	Status        ProductStatus `json:"status" db:"status"`
	ReviewerID    *string       `json:"reviewerId,omitempty" db:"reviewer_id"`
	AdminNote     *string       `json:"adminNote,omitempty" db:"admin_note"`
	ReviewedAt    *time.Time    `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Store *Store `json:"store,omitempty"`
}

// ProductCreation represents data for creating a new product.
// There is intentionally no inStock field: the flag is always derived from
// the quantity, never trusted from the client.
type ProductCreation struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	MRP           float64  `json:"mrp" validate:"required,gt=0"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	Images        []string `json:"images" validate:"required,min=1"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
}

// ProductUpdate represents data for editing a product
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	MRP         *float64 `json:"mrp,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// DeriveInStock recomputes the in-stock flag from the quantity
func (p *Product) DeriveInStock() {
	p.InStock = p.StockQuantity > 0
}

// IsStockConsistent reports whether the stock invariant holds
func (p *Product) IsStockConsistent() bool {
	return p.InStock == (p.StockQuantity > 0)
}

// GetImagesJSON returns images as JSON string for database storage
func (p *Product) GetImagesJSON() (string, error) {
	if len(p.Images) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(p.Images)
	return string(data), err
}

// SetImagesFromJSON sets images from JSON string
func (p *Product) SetImagesFromJSON(imagesJSON string) error {
	if imagesJSON == "" {
		p.Images = []string{}
		return nil
	}
	return json.Unmarshal([]byte(imagesJSON), &p.Images)
}
