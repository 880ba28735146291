package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DraftProduct is the part of a product the client keeps next to a cart
// line. Prices here are only what the shopper saw; Quote re-prices.
type DraftProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name,omitempty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type DraftItem struct {
	Product  DraftProduct `json:"product"`
	Quantity int          `json:"quantity"`
}

// Draft is the client-side cart. It serialises as a bare JSON array, the
// shape stored under the iro_cart key.
type Draft struct {
	items []DraftItem
}

func (d *Draft) Items() []DraftItem {
	out := make([]DraftItem, len(d.items))
	copy(out, d.items)
	return out
}

// Add appends the product or bumps its quantity. qty <= 0 counts as one.
func (d *Draft) Add(p DraftProduct, qty int) {
	if qty <= 0 {
		qty = 1
	}
	for i := range d.items {
		if d.items[i].Product.ID == p.ID {
			d.items[i].Quantity += qty
			return
		}
	}
	d.items = append(d.items, DraftItem{Product: p, Quantity: qty})
}

func (d *Draft) Remove(productID string) {
	kept := d.items[:0]
	for _, it := range d.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	d.items = kept
}

func (d *Draft) UpdateQty(productID string, qty int) {
	if qty <= 0 {
		d.Remove(productID)
		return
	}
	for i := range d.items {
		if d.items[i].Product.ID == productID {
			d.items[i].Quantity = qty
		}
	}
}

func (d *Draft) Clear() {
	d.items = nil
}

func (d *Draft) ItemCount() int {
	n := 0
	for _, it := range d.items {
		n += it.Quantity
	}
	return n
}

// DisplayTotal sums the prices the client saw. It is never charged.
func (d *Draft) DisplayTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.items {
		total = total.Add(it.Product.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (d *Draft) Lines() []Line {
	lines := make([]Line, 0, len(d.items))
	for _, it := range d.items {
		lines = append(lines, Line{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return lines
}

func (d Draft) MarshalJSON() ([]byte, error) {
	if d.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.items)
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var items []DraftItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	d.items = items
	return nil
}
