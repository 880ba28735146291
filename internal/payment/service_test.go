package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	args := m.Called(ctx, amountPaise, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayOrder), args.Error(1)
}

func newTestService(gw Gateway) *service {
	svc := NewService(gw, "secret", "").(*service)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults currency and receipt", func(t *testing.T) {
		gw := new(MockGateway)
		svc := newTestService(gw)

		gw.On("CreateOrder", ctx, int64(129900), "INR", "iro_1700000000123").
			Return(&GatewayOrder{ID: "order_abc", Amount: 129900}, nil)

		order, err := svc.CreateOrder(ctx, CreateOrderInput{Amount: 129900})

		require.NoError(t, err)
		assert.Equal(t, "order_abc", order.ID)
		gw.AssertExpectations(t)
	})

	t.Run("Explicit currency", func(t *testing.T) {
		gw := new(MockGateway)
		svc := newTestService(gw)

		gw.On("CreateOrder", ctx, int64(500), "USD", mock.Anything).Return(&GatewayOrder{ID: "order_usd"}, nil)

		_, err := svc.CreateOrder(ctx, CreateOrderInput{Amount: 500, Currency: "usd"})
		require.NoError(t, err)
	})

	t.Run("Below minimum", func(t *testing.T) {
		gw := new(MockGateway)
		svc := newTestService(gw)

		_, err := svc.CreateOrder(ctx, CreateOrderInput{Amount: 99})

		assert.ErrorIs(t, err, ErrMinimumAmount)
		gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Gateway failure", func(t *testing.T) {
		gw := new(MockGateway)
		svc := newTestService(gw)
		boom := errors.New("gateway down")

		gw.On("CreateOrder", ctx, int64(1000), "INR", mock.Anything).Return(nil, boom)

		_, err := svc.CreateOrder(ctx, CreateOrderInput{Amount: 1000})
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(new(MockGateway))

	res := svc.Verify(ctx, VerifyInput{
		OrderID:   "order_abc",
		PaymentID: "pay_123",
		Signature: "9ce39261e119b2f4659e30dd118de68ee51b654d2bb0762c7c01e2ba887feea3",
	})
	assert.Equal(t, VerifyResult{Verified: true}, res)

	res = svc.Verify(ctx, VerifyInput{OrderID: "order_abc", PaymentID: "pay_123", Signature: "deadbeef"})
	assert.False(t, res.Verified)
	assert.Equal(t, "Signature mismatch", res.Error)
}
