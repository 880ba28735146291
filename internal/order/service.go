package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"irokart-be/internal/address"
	"irokart-be/internal/cart"
	"irokart-be/internal/logger"
	"irokart-be/internal/metrics"
	"irokart-be/internal/payment"
	"irokart-be/internal/realtime"
	"irokart-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Place(ctx context.Context, in PlaceOrderInput) (*PlaceResult, error)
	List(ctx context.Context, f ListFilter) (*ListResult, error)
	ListByProfile(ctx context.Context, profileID string) ([]*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, in StatusUpdate) (*Order, error)
}

// Quoter prices checkout lines against the live catalog.
type Quoter interface {
	Quote(ctx context.Context, lines []cart.Line) (*cart.Quote, error)
}

type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

type service struct {
	repo     Repository
	quoter   Quoter
	verifier SignatureVerifier
	pub      realtime.Publisher
	now      func() time.Time
}

func NewService(repo Repository, quoter Quoter, verifier SignatureVerifier, pub realtime.Publisher) Service {
	return &service{
		repo:     repo,
		quoter:   quoter,
		verifier: verifier,
		pub:      pub,
		now:      time.Now,
	}
}

func (s *service) Place(ctx context.Context, in PlaceOrderInput) (*PlaceResult, error) {
	timer := metrics.StartTimer()
	defer timer.ObserveInto(metrics.Default().Timing(metrics.OrderPlaceLatency))

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Place"),
		zap.String("profile_id", in.ProfileID),
	)

	res, err := s.place(ctx, log, in)
	if err != nil {
		metrics.Default().Counter(metrics.OrdersFailed).Inc()
		log.Warn("order not placed", zap.Error(err))
		return nil, err
	}
	metrics.Default().Counter(metrics.OrdersPlaced).Inc()
	return res, nil
}

func (s *service) place(ctx context.Context, log *zap.Logger, in PlaceOrderInput) (*PlaceResult, error) {
	if err := validatePlacement(&in); err != nil {
		return nil, err
	}

	pi := in.PaymentInfo
	if pi.GatewayOrderID != "" && pi.GatewaySignature != "" &&
		!s.verifier.VerifySignature(pi.GatewayOrderID, pi.GatewayPaymentID, pi.GatewaySignature) {
		metrics.Default().Counter(metrics.PaymentSignatureFailures).Inc()
		return nil, ErrSignatureMismatch
	}

	lines := make([]cart.Line, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, cart.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	quote, err := s.quoter.Quote(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := quote.Err(); err != nil {
		return nil, err
	}

	tax := decimalOrZero(in.TaxAmount)
	discount := decimalOrZero(in.DiscountAmount)
	if discount.GreaterThan(quote.Subtotal) {
		return nil, ErrDiscountExceeds
	}
	total := quote.Subtotal.Sub(discount).Add(tax).Add(quote.ShippingAmount).Round(2)
	warnOnEchoMismatch(log, in, quote, total)

	billing := *in.ShippingAddress
	if in.BillingAddress != nil {
		billing = *in.BillingAddress
		billing.Normalize()
	}

	now := s.now()
	o := &Order{
		OrderNumber:     utils.GenerateOrderNumber(now),
		ProfileID:       in.ProfileID,
		OrderType:       OrderTypeIndividual,
		ShippingAddress: *in.ShippingAddress,
		BillingAddress:  billing,
		Subtotal:        quote.Subtotal,
		DiscountAmount:  discount,
		TaxAmount:       tax,
		ShippingAmount:  quote.ShippingAmount,
		TotalAmount:     total,
		Status:          StatusConfirmed,
		PaymentStatus:   payment.StatusCaptured,
		CustomerNote:    in.CustomerNote,
	}

	items := itemsFromQuote(quote, in.Items)

	paidAt := now.UTC()
	pay := &payment.Payment{
		ProfileID:        in.ProfileID,
		PaymentMethod:    orDefault(pi.PaymentMethod, payment.ProviderRazorpay),
		PaymentGateway:   orDefault(pi.PaymentGateway, payment.ProviderRazorpay),
		GatewayOrderID:   utils.NilIfEmpty(pi.GatewayOrderID),
		GatewayPaymentID: utils.NilIfEmpty(pi.GatewayPaymentID),
		GatewaySignature: utils.NilIfEmpty(pi.GatewaySignature),
		Amount:           total,
		Currency:         payment.DefaultCurrency,
		Status:           payment.StatusCaptured,
		PaidAt:           &paidAt,
	}

	if err := s.repo.PlaceTx(ctx, o, items, pay); err != nil {
		return nil, err
	}

	realtime.PublishAll(ctx, s.pub,
		realtime.NewEvent(realtime.TableOrders, realtime.OpInsert, o.ID),
		realtime.NewEvent(realtime.TableOrderItems, realtime.OpInsert, o.ID),
		realtime.NewEvent(realtime.TablePayments, realtime.OpInsert, pay.ID),
		realtime.NewEvent(realtime.TableInventory, realtime.OpUpdate, ""),
	)

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", total.StringFixed(2)),
	)
	return &PlaceResult{Success: true, OrderID: o.ID, OrderNumber: o.OrderNumber}, nil
}

func validatePlacement(in *PlaceOrderInput) error {
	in.ProfileID = strings.TrimSpace(in.ProfileID)
	if in.ProfileID == "" || len(in.Items) == 0 {
		return ErrMissingOrderData
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 {
			return ErrInvalidItem
		}
	}
	if strings.TrimSpace(in.PaymentInfo.GatewayPaymentID) == "" {
		return ErrMissingPaymentID
	}
	if in.ShippingAddress == nil {
		return address.ErrIncompleteAddress
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return err
	}
	in.ShippingAddress.Normalize()
	if in.TaxAmount != nil && in.TaxAmount.IsNegative() {
		return ErrNegativeTax
	}
	if in.DiscountAmount != nil && in.DiscountAmount.IsNegative() {
		return ErrNegativeDiscount
	}
	return nil
}

// itemsFromQuote snapshots the authoritative line data. The client's image
// url is kept only when the catalog has none.
func itemsFromQuote(q *cart.Quote, echo []PlaceItemInput) []*Item {
	images := make(map[string]*string, len(echo))
	for _, it := range echo {
		if it.ProductImageURL != nil {
			images[strings.TrimSpace(it.ProductID)] = it.ProductImageURL
		}
	}

	items := make([]*Item, 0, len(q.Lines))
	for _, l := range q.Lines {
		it := &Item{
			ProductID:         l.ProductID,
			SellerID:          l.SellerID,
			ProductName:       l.ProductName,
			ProductSKU:        l.SKU,
			ProductImageURL:   l.ProductImageURL,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			CostPrice:         l.CostPrice,
			DiscountAmount:    decimal.Zero,
			TaxAmount:         decimal.Zero,
			TotalPrice:        l.TotalPrice.Round(2),
			ItemType:          ItemTypePhysical,
			FulfillmentStatus: FulfillmentPending,
		}
		if !l.TracksStock() {
			it.ItemType = ItemTypeDigital
		}
		if it.ProductImageURL == nil {
			it.ProductImageURL = images[l.ProductID]
		}
		items = append(items, it)
	}
	return items
}

func warnOnEchoMismatch(log *zap.Logger, in PlaceOrderInput, q *cart.Quote, total decimal.Decimal) {
	if in.Subtotal != nil && !in.Subtotal.Equal(q.Subtotal) {
		log.Warn("client subtotal differs from catalog price",
			zap.String("client", in.Subtotal.String()),
			zap.String("server", q.Subtotal.StringFixed(2)),
		)
	}
	if in.ShippingAmount != nil && !in.ShippingAmount.Equal(q.ShippingAmount) {
		log.Warn("client shipping differs",
			zap.String("client", in.ShippingAmount.String()),
			zap.String("server", q.ShippingAmount.StringFixed(2)),
		)
	}
	if in.TotalAmount != nil && !in.TotalAmount.Equal(total) {
		log.Warn("client total differs",
			zap.String("client", in.TotalAmount.String()),
			zap.String("server", total.StringFixed(2)),
		)
	}

	prices := make(map[string]decimal.Decimal, len(q.Lines))
	for _, l := range q.Lines {
		prices[l.ProductID] = l.UnitPrice
	}
	for _, it := range in.Items {
		if it.UnitPrice == nil {
			continue
		}
		if p, ok := prices[strings.TrimSpace(it.ProductID)]; ok && !p.Equal(*it.UnitPrice) {
			log.Warn("client unit price differs",
				zap.String("product_id", it.ProductID),
				zap.String("client", it.UnitPrice.String()),
				zap.String("server", p.String()),
			)
		}
	}
}

func (s *service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	orders, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: orders, Total: total}, nil
}

func (s *service) ListByProfile(ctx context.Context, profileID string) ([]*Order, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrMissingProfileID
	}
	if !utils.IsUUID(profileID) {
		return []*Order{}, nil
	}
	return s.repo.ListByProfile(ctx, profileID)
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if !utils.IsUUID(id) {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetDetail(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, in StatusUpdate) (*Order, error) {
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !utils.IsUUID(id) {
		return nil, ErrOrderNotFound
	}

	o, err := s.repo.UpdateStatusTx(ctx, id, in, s.now().UTC())
	if err != nil {
		var te *TransitionError
		if errors.As(err, &te) {
			metrics.Default().Counter(metrics.OrderTransitionsRejected).Inc()
		}
		return nil, err
	}
	metrics.Default().Counter(metrics.OrderStatusUpdates).Inc()

	realtime.PublishAll(ctx, s.pub,
		realtime.NewEvent(realtime.TableOrders, realtime.OpUpdate, o.ID),
		realtime.NewEvent(realtime.TableOrderItems, realtime.OpUpdate, o.ID),
		realtime.NewEvent(realtime.TableInventory, realtime.OpUpdate, ""),
	)
	return o, nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
