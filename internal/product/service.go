package product

import (
	"context"
	"encoding/json"
	"strings"

	"irokart-be/internal/apperr"
	"irokart-be/internal/inventory"
	"irokart-be/internal/logger"
	"irokart-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	Get(ctx context.Context, idOrSlug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
	Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*Product, error)
	Delete(ctx context.Context, id string) error
	SetInventory(ctx context.Context, id string, in InventoryInput) (*inventory.Level, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	} else if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// Get resolves a product by id when the key looks like a UUID and by slug
// otherwise. Lookups by id ignore the active flag so old orders can still
// show what was bought.
func (s *service) Get(ctx context.Context, idOrSlug string) (*Product, error) {
	key := strings.TrimSpace(idOrSlug)
	if key == "" {
		return nil, ErrProductNotFound
	}
	if utils.IsUUID(key) {
		return s.repo.GetByID(ctx, key)
	}
	return s.repo.GetBySlug(ctx, key)
}

func (s *service) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if utils.IsUUID(id) {
			valid = append(valid, id)
		}
	}
	return s.repo.GetByIDs(ctx, valid)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	if !utils.IsUUID(categoryID) {
		return nil, ErrInvalidCategory
	}
	if in.SellingPrice == nil || !in.SellingPrice.IsPositive() {
		return nil, ErrInvalidSellingPrice
	}

	slug := in.Slug
	if strings.TrimSpace(slug) == "" {
		slug = name
	}
	slug = utils.Slugify(slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	p := &Product{
		SellerID:         utils.NilIfEmpty(in.SellerID),
		CategoryID:       &categoryID,
		Name:             name,
		Slug:             slug,
		ShortDescription: utils.NilIfEmpty(strings.TrimSpace(in.ShortDescription)),
		Description:      utils.NilIfEmpty(strings.TrimSpace(in.Description)),
		ProductType:      TypePhysical,
		SKU:              utils.NilIfEmpty(strings.TrimSpace(in.SKU)),
		CostPrice:        decimal.Zero,
		SellingPrice:     *in.SellingPrice,
		TaxRate:          DefaultTaxRate,
		Status:           StatusDraft,
		IsFeatured:       in.IsFeatured,
		IsActive:         true,
	}
	if in.ProductType != "" {
		if !in.ProductType.Valid() {
			return nil, ErrInvalidType
		}
		p.ProductType = in.ProductType
	}
	if in.ProductStatus != "" {
		if !in.ProductStatus.Valid() {
			return nil, ErrInvalidStatus
		}
		p.Status = in.ProductStatus
	}
	if in.CostPrice != nil {
		p.CostPrice = *in.CostPrice
	}
	if in.CompareAtPrice != nil {
		p.CompareAtPrice = decimal.NewNullDecimal(*in.CompareAtPrice)
	}
	if in.TaxRate != nil {
		p.TaxRate = *in.TaxRate
	}

	stock := 0
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return nil, ErrInvalidQuantity
		}
		stock = *in.StockQuantity
	}
	threshold := inventory.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold <= 0 {
			return nil, ErrInvalidThreshold
		}
		threshold = *in.LowStockThreshold
	}

	if err := s.repo.Create(ctx, p, strings.TrimSpace(in.PrimaryImageURL), stock, threshold); err != nil {
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*Product, error) {
	if !utils.IsUUID(id) {
		return nil, ErrProductNotFound
	}

	fields, err := patchColumns(patch)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if !utils.IsUUID(id) {
		return ErrProductNotFound
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deactivated", zap.String("product_id", id))
	return nil
}

func (s *service) SetInventory(ctx context.Context, id string, in InventoryInput) (*inventory.Level, error) {
	if !utils.IsUUID(id) {
		return nil, ErrProductNotFound
	}
	if in.Quantity == nil || *in.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold <= 0 {
		return nil, ErrInvalidThreshold
	}
	return s.repo.SetInventory(ctx, id, *in.Quantity, in.LowStockThreshold)
}

type columnKind int

const (
	textColumn columnKind = iota
	nullableTextColumn
	moneyColumn
	nullableMoneyColumn
	boolColumn
	typeColumn
	statusColumn
)

var patchable = map[string]columnKind{
	"name":              textColumn,
	"slug":              textColumn,
	"short_description": nullableTextColumn,
	"description":       nullableTextColumn,
	"sku":               nullableTextColumn,
	"category_id":       nullableTextColumn,
	"product_type":      typeColumn,
	"product_status":    statusColumn,
	"cost_price":        moneyColumn,
	"selling_price":     moneyColumn,
	"compare_at_price":  nullableMoneyColumn,
	"tax_rate":          moneyColumn,
	"is_featured":       boolColumn,
	"is_active":         boolColumn,
}

var ignoredPatchKeys = map[string]bool{"id": true, "updated_at": true, "created_at": true}

// patchColumns turns a JSON patch into typed column values. Unknown keys are
// rejected so a typo never turns into a silent no-op.
func patchColumns(patch map[string]json.RawMessage) (map[string]any, error) {
	fields := make(map[string]any, len(patch))
	for key, raw := range patch {
		if ignoredPatchKeys[key] {
			continue
		}
		kind, ok := patchable[key]
		if !ok {
			return nil, apperr.Validationf("field cannot be updated: %s", key)
		}
		v, err := decodeColumn(key, kind, raw)
		if err != nil {
			return nil, err
		}
		fields[key] = v
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	return fields, nil
}

func decodeColumn(key string, kind columnKind, raw json.RawMessage) (any, error) {
	invalid := apperr.Validationf("invalid value for %s", key)

	switch kind {
	case textColumn, nullableTextColumn:
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, invalid
		}
		if v == nil || strings.TrimSpace(*v) == "" {
			if kind == textColumn {
				return nil, invalid
			}
			return nil, nil
		}
		if key == "category_id" && !utils.IsUUID(*v) {
			return nil, invalid
		}
		if key == "slug" {
			slug := utils.Slugify(*v)
			if slug == "" {
				return nil, ErrInvalidSlug
			}
			return slug, nil
		}
		return strings.TrimSpace(*v), nil

	case moneyColumn, nullableMoneyColumn:
		var v decimal.NullDecimal
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, invalid
		}
		if !v.Valid {
			if kind == moneyColumn {
				return nil, invalid
			}
			return nil, nil
		}
		if v.Decimal.IsNegative() {
			return nil, invalid
		}
		if key == "selling_price" && !v.Decimal.IsPositive() {
			return nil, ErrInvalidSellingPrice
		}
		return v.Decimal, nil

	case boolColumn:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, invalid
		}
		return v, nil

	case typeColumn:
		var v Type
		if err := json.Unmarshal(raw, &v); err != nil || !v.Valid() {
			return nil, ErrInvalidType
		}
		return string(v), nil

	case statusColumn:
		var v Status
		if err := json.Unmarshal(raw, &v); err != nil || !v.Valid() {
			return nil, ErrInvalidStatus
		}
		return string(v), nil
	}
	return nil, invalid
}
