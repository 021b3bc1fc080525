package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDIENTE"
	OrderStatusProcessing OrderStatus = "PROCESANDO"
	OrderStatusShipped    OrderStatus = "ENVIADO"
	OrderStatusDelivered  OrderStatus = "ENTREGADO"
	OrderStatusCancelled  OrderStatus = "CANCELADO"
)

// Cancellable reports whether the order service still accepts a cancellation.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ProductID int64           `json:"productoId"`
	Quantity  int             `json:"cantidad"`
	Price     decimal.Decimal `json:"precio"`
}

// MarshalJSON writes the price as a JSON number, which is what the order
// service expects for its decimal columns.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID int64       `json:"productoId"`
		Quantity  int         `json:"cantidad"`
		Price     json.Number `json:"precio"`
	}{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Price:     json.Number(i.Price.String()),
	})
}

// Order is the checkout request built from the cart.
type Order struct {
	UserID int64       `json:"usuarioId"`
	Items  []OrderItem `json:"items"`
}

func NewOrder(userID int64, cart Cart) Order {
	items := make([]OrderItem, 0, cart.Len())
	for _, it := range cart.items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return Order{UserID: userID, Items: items}
}

// OrderRecord is an order as reported back by the order service.
type OrderRecord struct {
	ID        int64             `json:"id"`
	CreatedAt string            `json:"fechaPedido,omitempty"`
	Total     decimal.Decimal   `json:"total"`
	Status    OrderStatus       `json:"estado"`
	Items     []OrderRecordItem `json:"items,omitempty"`
}

type OrderRecordItem struct {
	ID       int64           `json:"id"`
	Product  *Product        `json:"producto,omitempty"`
	Quantity int             `json:"cantidad"`
	Price    decimal.Decimal `json:"precio"`
}
