package domain

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrItemNotInCart     = errors.New("item not found in cart")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
)

// ShippingFlatFee is charged on every non-empty cart.
var ShippingFlatFee = decimal.NewFromInt(50)

// LineItem is one product entry in the cart. Name, Price and Image are
// captured when the product is first added and are not refreshed afterwards.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"nombre"`
	Price     decimal.Decimal `json:"precio"`
	Image     string          `json:"imagen,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Cart is an ordered list of line items, unique by product id.
// It serializes as a bare JSON array of line items.
type Cart struct {
	items []LineItem
}

// NewCart builds a cart from stored items, dropping entries with a
// non-positive quantity and merging duplicates into their first occurrence.
func NewCart(items []LineItem) Cart {
	return Cart{items: normalize(items)}
}

func (c Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Clone() Cart {
	return Cart{items: c.Items()}
}

func (c Cart) Len() int {
	return len(c.items)
}

// Count is the total number of units across all line items.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Find(productID int64) (LineItem, bool) {
	if idx := c.index(productID); idx >= 0 {
		return c.items[idx], true
	}
	return LineItem{}, false
}

func (c Cart) Summary() Summary {
	subtotal := decimal.Zero
	for _, it := range c.items {
		subtotal = subtotal.Add(it.Subtotal())
	}
	shipping := decimal.Zero
	if !subtotal.IsZero() {
		shipping = ShippingFlatFee
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// AddProduct adds one unit of p, checked against the stock of the given snapshot.
func (c *Cart) AddProduct(p Product) error {
	if !p.InStock() {
		return ErrOutOfStock
	}

	idx := c.index(p.ID)
	if idx >= 0 {
		if c.items[idx].Quantity+1 > p.Stock {
			return ErrInsufficientStock
		}
		c.items[idx].Quantity++
		return nil
	}

	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	})
	return nil
}

// SetQuantity replaces the quantity of an existing line item. Callers route
// non-positive quantities to Remove.
func (c *Cart) SetQuantity(p Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	idx := c.index(p.ID)
	if idx < 0 {
		return ErrItemNotInCart
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	c.items[idx].Quantity = quantity
	return nil
}

// Remove drops the line item for productID and reports whether one existed.
func (c *Cart) Remove(productID int64) bool {
	idx := c.index(productID)
	if idx < 0 {
		return false
	}
	// preserve order
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items = normalize(items)
	return nil
}

func (c Cart) index(productID int64) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func normalize(src []LineItem) []LineItem {
	out := make([]LineItem, 0, len(src))
	seen := make(map[int64]int, len(src))
	for _, it := range src {
		if it.Quantity <= 0 {
			continue
		}
		if idx, ok := seen[it.ProductID]; ok {
			out[idx].Quantity += it.Quantity
			continue
		}
		seen[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
