package domain

import "github.com/shopspring/decimal"

// Product is a read-only snapshot of a catalog entry. Stock is owned by the
// remote catalog and only ever refreshed, never adjusted locally.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Image       string          `json:"imagen,omitempty"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// FindProduct returns the product with the given id from a catalog snapshot.
func FindProduct(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
