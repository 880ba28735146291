package cart

import (
	"context"
	"strings"

	"irokart-be/internal/logger"
	"irokart-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

type Service interface {
	Quote(ctx context.Context, lines []Line) (*Quote, error)
	Pricing() Pricing
}

type service struct {
	products ProductLookup
	pricing  Pricing
}

func NewService(products ProductLookup, pricing Pricing) Service {
	return &service{products: products, pricing: pricing}
}

func (s *service) Pricing() Pricing {
	return s.pricing
}

// Quote prices every line against the live catalog. Lines for the same
// product are merged first, keeping the order they first appeared in.
// Problems are reported per line; the caller decides whether they block.
func (s *service) Quote(ctx context.Context, lines []Line) (*Quote, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Quote"),
	)

	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(merged))
	for _, l := range merged {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to load products", zap.Error(err))
		return nil, err
	}

	q := &Quote{Lines: make([]*QuoteLine, 0, len(merged)), Subtotal: decimal.Zero, OK: true}
	for _, l := range merged {
		ql := &QuoteLine{ProductID: l.ProductID, Quantity: l.Quantity}
		q.ItemCount += l.Quantity

		p, ok := products[l.ProductID]
		if !ok {
			ql.Problem = ProblemNotFound
			q.OK = false
			q.Lines = append(q.Lines, ql)
			continue
		}

		ql.SellerID = p.SellerID
		ql.ProductName = p.Name
		ql.SKU = p.SKU
		ql.ProductImageURL = p.PrimaryImageURL
		ql.ProductType = p.ProductType
		ql.UnitPrice = p.SellingPrice
		ql.CostPrice = p.CostPrice
		ql.TotalPrice = p.SellingPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		ql.AvailableQuantity = p.AvailableQuantity

		switch {
		case !p.Sellable():
			ql.Problem = ProblemInactive
		case p.TracksStock() && l.Quantity > p.AvailableQuantity:
			ql.Problem = ProblemInsufficientStock
		}
		if ql.Problem != "" {
			q.OK = false
		}

		q.Subtotal = q.Subtotal.Add(ql.TotalPrice)
		q.Lines = append(q.Lines, ql)
	}

	q.Subtotal = q.Subtotal.Round(2)
	q.ShippingAmount = s.pricing.Shipping(q.Subtotal)
	q.TotalAmount = q.Subtotal.Add(q.ShippingAmount)

	log.Debug("cart quoted",
		zap.Int("lines", len(q.Lines)),
		zap.String("subtotal", q.Subtotal.StringFixed(2)),
		zap.Bool("ok", q.OK),
	)
	return q, nil
}

func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[string]int, len(lines))
	merged := make([]Line, 0, len(lines))
	for _, l := range lines {
		id := strings.TrimSpace(l.ProductID)
		if id == "" {
			return nil, ErrMissingProductID
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[id]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, Line{ProductID: id, Quantity: l.Quantity})
	}
	return merged, nil
}
