package product

import (
	"time"

	"irokart-be/internal/inventory"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft        Status = "draft"
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusOutOfStock   Status = "out_of_stock"
	StatusDiscontinued Status = "discontinued"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusInactive, StatusOutOfStock, StatusDiscontinued:
		return true
	}
	return false
}

type Type string

const (
	TypePhysical Type = "physical"
	TypeDigital  Type = "digital"
)

func (t Type) Valid() bool {
	return t == TypePhysical || t == TypeDigital
}

var DefaultTaxRate = decimal.NewFromInt(18)

type Image struct {
	ID        string  `json:"id"`
	ProductID string  `json:"-"`
	ImageURL  string  `json:"image_url"`
	AltText   *string `json:"alt_text"`
	IsPrimary bool    `json:"is_primary"`
	SortOrder int     `json:"sort_order"`
}

type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID               string              `json:"id"`
	SellerID         *string             `json:"seller_id"`
	CategoryID       *string             `json:"category_id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	ShortDescription *string             `json:"short_description"`
	Description      *string             `json:"description"`
	ProductType      Type                `json:"product_type"`
	SKU              *string             `json:"sku"`
	CostPrice        decimal.Decimal     `json:"cost_price"`
	SellingPrice     decimal.Decimal     `json:"selling_price"`
	CompareAtPrice   decimal.NullDecimal `json:"compare_at_price"`
	TaxRate          decimal.Decimal     `json:"tax_rate"`
	Status           Status              `json:"product_status"`
	IsFeatured       bool                `json:"is_featured"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`

	Category  *CategoryRef     `json:"categories"`
	Images    []Image          `json:"product_images"`
	Inventory *inventory.Level `json:"inventory"`

	// derived at read time
	PrimaryImageURL   *string               `json:"primary_image_url"`
	StockQuantity     int                   `json:"stock_quantity"`
	AvailableQuantity int                   `json:"available_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	StockStatus       inventory.StockStatus `json:"stock_status"`
}

// Enrich fills the derived fields from Images and Inventory.
func (p *Product) Enrich() {
	p.PrimaryImageURL = nil
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			p.PrimaryImageURL = &p.Images[i].ImageURL
			break
		}
	}
	if p.PrimaryImageURL == nil && len(p.Images) > 0 {
		p.PrimaryImageURL = &p.Images[0].ImageURL
	}

	if p.Inventory != nil {
		p.StockQuantity = p.Inventory.Quantity
	} else {
		p.StockQuantity = 0
	}
	p.AvailableQuantity = p.Inventory.Available()
	p.LowStockThreshold = p.Inventory.Threshold()
	p.StockStatus = p.Inventory.Status()
}

// Sellable reports whether the product can be bought at all, ignoring stock.
func (p *Product) Sellable() bool {
	return p.IsActive && p.Status == StatusActive
}

// TracksStock is true for physical goods; digital goods are never reserved.
func (p *Product) TracksStock() bool {
	return p.ProductType != TypeDigital
}

type ListFilter struct {
	Status          string
	IncludeInactive bool
	Category        string
	Search          string
	Limit           int
	Offset          int
}

type CreateInput struct {
	SellerID          string           `json:"-"`
	Name              string           `json:"name" validate:"required"`
	Slug              string           `json:"slug"`
	ShortDescription  string           `json:"short_description"`
	Description       string           `json:"description"`
	SKU               string           `json:"sku"`
	CategoryID        string           `json:"category_id" validate:"required"`
	ProductType       Type             `json:"product_type"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price" validate:"required"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price"`
	TaxRate           *decimal.Decimal `json:"tax_rate"`
	ProductStatus     Status           `json:"product_status"`
	IsFeatured        bool             `json:"is_featured"`
	PrimaryImageURL   string           `json:"primary_image_url"`
	StockQuantity     *int             `json:"stock_quantity"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
}

type InventoryInput struct {
	Quantity          *int `json:"quantity" validate:"required"`
	LowStockThreshold *int `json:"low_stock_threshold"`
}
