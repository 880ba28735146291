package api

import (
	"encoding/json"
	"net/http"

	"irokart-be/internal/cart"
	"irokart-be/internal/category"
	"irokart-be/internal/product"
	"irokart-be/internal/transport"
	"irokart-be/internal/utils"
)

type productsResponse struct {
	Products []*product.Product `json:"products"`
}

type categoriesResponse struct {
	Categories []*category.Category `json:"categories"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// quoteRequest accepts explicit lines, the stored iro_cart draft, or both.
type quoteRequest struct {
	Items []cart.Line `json:"items"`
	Cart  *cart.Draft `json:"cart,omitempty"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := transport.Page(r, product.DefaultListLimit, product.MaxListLimit)

	products, err := h.svc.Products.List(r.Context(), product.ListFilter{
		Status:          q.Get("status"),
		IncludeInactive: transport.QueryBool(r, "include_inactive"),
		Category:        q.Get("category"),
		Search:          q.Get("search"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, productsResponse{Products: products})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Products.Get(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	in.SellerID, _ = utils.GetUserIDFromContext(r.Context())

	p, err := h.svc.Products.Create(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := transport.Decode(r, &patch); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Products.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) SetInventory(w http.ResponseWriter, r *http.Request) {
	var in product.InventoryInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	level, err := h.svc.Products.SetInventory(r.Context(), r.PathValue("id"), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, level)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Products.Delete(r.Context(), r.PathValue("id")); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories.List(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

// QuoteCart prices a client-side cart. Line problems are reported in the
// quote rather than as an error.
func (h *Handler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := transport.Decode(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	lines := req.Items
	if req.Cart != nil {
		lines = append(lines, req.Cart.Lines()...)
	}

	quote, err := h.svc.Cart.Quote(r.Context(), lines)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, quote)
}
