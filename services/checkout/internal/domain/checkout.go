package domain

import (
	"slices"
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

// Payment method constants.
const (
	PaymentSplit = "split"
	PaymentCard  = "card"
	PaymentCash  = "cash"
)

// ValidPaymentMethods returns the payment methods in display order.
func ValidPaymentMethods() []string {
	return []string{PaymentSplit, PaymentCard, PaymentCash}
}

// IsValidPaymentMethod checks whether the given string is a valid payment method.
func IsValidPaymentMethod(method string) bool {
	return slices.Contains(ValidPaymentMethods(), method)
}

// Item is a cart line as snapshotted into an order request.
type Item struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Title     string       `json:"title"`
	Color     string       `json:"color,omitempty"`
	Storage   string       `json:"storage,omitempty"`
	SimType   string       `json:"sim_type,omitempty"`
	Price     money.Amount `json:"price"`
	Quantity  int          `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i Item) Subtotal() money.Amount {
	return i.Price.Mul(i.Quantity)
}

// OrderRequest is a submitted checkout form together with the cart it was
// placed from. It is emitted as an event and never stored.
type OrderRequest struct {
	ID            string       `json:"id"`
	SessionID     string       `json:"session_id"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	PaymentMethod string       `json:"payment_method"`
	Items         []Item       `json:"items"`
	TotalItems    int          `json:"total_items"`
	TotalPrice    money.Amount `json:"total_price"`
	CreatedAt     time.Time    `json:"created_at"`
}

// CalculateTotals recomputes TotalItems and TotalPrice from the items.
func (o *OrderRequest) CalculateTotals() {
	o.TotalItems = 0
	o.TotalPrice = money.Zero
	for _, item := range o.Items {
		o.TotalItems += item.Quantity
		o.TotalPrice = o.TotalPrice.Add(item.Subtotal())
	}
}
