package api

import (
	"context"
	"encoding/json"

	"irokart-be/internal/auth"
	"irokart-be/internal/cart"
	"irokart-be/internal/category"
	"irokart-be/internal/dashboard"
	"irokart-be/internal/inventory"
	"irokart-be/internal/order"
	"irokart-be/internal/payment"
	"irokart-be/internal/product"
	"irokart-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) SignUp(ctx context.Context, in user.SignUpInput) (*user.AuthUser, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthUser), args.Error(1)
}

func (m *MockUserService) SignIn(ctx context.Context, in user.SignInInput) (*user.AuthUser, *auth.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*user.AuthUser), args.Get(1).(*auth.Session), args.Error(2)
}

func (m *MockUserService) Me(ctx context.Context, uid string) (any, error) {
	args := m.Called(ctx, uid)
	return args.Get(0), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, f user.ListFilter) ([]*user.Profile, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Profile), args.Error(1)
}

func (m *MockUserService) SetAccountStatus(ctx context.Context, id string, status user.AccountStatus) (*user.Profile, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

func (m *MockUserService) SetUserType(ctx context.Context, id string, t user.UserType) (*user.Profile, error) {
	args := m.Called(ctx, id, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, f product.ListFilter) ([]*product.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, idOrSlug string) (*product.Product, error) {
	args := m.Called(ctx, idOrSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*product.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) SetInventory(ctx context.Context, id string, in product.InventoryInput) (*inventory.Level, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Level), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Quote(ctx context.Context, lines []cart.Line) (*cart.Quote, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Quote), args.Error(1)
}

func (m *MockCartService) Pricing() cart.Pricing {
	return m.Called().Get(0).(cart.Pricing)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Place(ctx context.Context, in order.PlaceOrderInput) (*order.PlaceResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PlaceResult), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, f order.ListFilter) (*order.ListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ListResult), args.Error(1)
}

func (m *MockOrderService) ListByProfile(ctx context.Context, profileID string) ([]*order.Order, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, in order.StatusUpdate) (*order.Order, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context) (*dashboard.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Stats), args.Error(1)
}

func (m *MockDashboardService) RecentOrders(ctx context.Context) ([]*dashboard.RecentOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dashboard.RecentOrder), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, in payment.VerifyInput) payment.VerifyResult {
	return m.Called(ctx, in).Get(0).(payment.VerifyResult)
}

func (m *MockPaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}
