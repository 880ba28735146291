package api

import (
	"net/http"
	"time"

	"irokart-be/internal/cart"
	"irokart-be/internal/category"
	"irokart-be/internal/dashboard"
	"irokart-be/internal/metrics"
	"irokart-be/internal/middleware"
	"irokart-be/internal/order"
	"irokart-be/internal/payment"
	"irokart-be/internal/product"
	"irokart-be/internal/realtime"
	"irokart-be/internal/user"
)

const (
	defaultStreamDebounce  = 250 * time.Millisecond
	defaultStreamHeartbeat = 25 * time.Second
)

// Services is everything the HTTP surface delegates to.
type Services struct {
	Users      user.Service
	Categories category.Service
	Products   product.Service
	Cart       cart.Service
	Orders     order.Service
	Dashboard  dashboard.Service
	Payments   payment.Service
	Webhook    http.Handler
	Bus        realtime.Bus
	Metrics    *metrics.Registry
	// Accounts re-checks the stored role and status on admin routes. Nil
	// trusts the token claims alone.
	Accounts   middleware.AccountLookup
}

type Handler struct {
	svc          Services
	enforceAdmin bool

	streamDebounce  time.Duration
	streamHeartbeat time.Duration
}

func NewHandler(svc Services, enforceAdmin bool) *Handler {
	if svc.Metrics == nil {
		svc.Metrics = metrics.Default()
	}
	return &Handler{
		svc:             svc,
		enforceAdmin:    enforceAdmin,
		streamDebounce:  defaultStreamDebounce,
		streamHeartbeat: defaultStreamHeartbeat,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", h.SignUp)
	mux.HandleFunc("POST /api/auth/signin", h.SignIn)
	mux.HandleFunc("GET /api/auth/me", h.Me)

	mux.Handle("GET /api/orders", h.admin(h.ListOrders))
	mux.HandleFunc("GET /api/orders/my", h.MyOrders)
	mux.Handle("GET /api/orders/{id}", h.admin(h.GetOrder))
	mux.Handle("PATCH /api/orders/{id}/status", h.admin(h.UpdateOrderStatus))
	mux.HandleFunc("POST /api/orders/place", h.PlaceOrder)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.Handle("POST /api/products", h.admin(h.CreateProduct))
	mux.HandleFunc("GET /api/products/{idOrSlug}", h.GetProduct)
	mux.Handle("PATCH /api/products/{id}", h.admin(h.UpdateProduct))
	mux.Handle("PUT /api/products/{id}/inventory", h.admin(h.SetInventory))
	mux.Handle("DELETE /api/products/{id}", h.admin(h.DeleteProduct))

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/cart/quote", h.QuoteCart)

	mux.Handle("GET /api/users", h.admin(h.ListUsers))
	mux.Handle("PATCH /api/users/{id}/status", h.admin(h.SetAccountStatus))
	mux.Handle("PATCH /api/users/{id}/role", h.admin(h.SetUserType))

	mux.Handle("GET /api/dashboard/stats", h.admin(h.DashboardStats))
	mux.Handle("GET /api/dashboard/stats/stream", h.admin(h.StreamDashboardStats))
	mux.Handle("GET /api/dashboard/recent-orders", h.admin(h.RecentOrders))

	mux.HandleFunc("POST /api/payments/create-order", h.CreatePaymentOrder)
	mux.HandleFunc("POST /api/payments/verify", h.VerifyPayment)
	if h.svc.Webhook != nil {
		mux.Handle("POST /api/payments/webhook", h.svc.Webhook)
	}

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/metrics", h.Metrics)

	return mux
}

// admin guards fn with the admin role when enforcement is on.
func (h *Handler) admin(fn http.HandlerFunc) http.Handler {
	if !h.enforceAdmin {
		return fn
	}
	if h.svc.Accounts != nil {
		return middleware.RequireActiveRole(h.svc.Accounts, string(user.TypeAdmin))(fn)
	}
	return middleware.RequireRole(string(user.TypeAdmin))(fn)
}
