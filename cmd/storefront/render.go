package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notice"
)

func formatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderNotice(w io.Writer, n notice.Notice) {
	if n.Text == "" {
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Text)
}

// renderBadge is the cart counter refreshed after each cart change.
func renderBadge(w io.Writer, cart domain.Cart) {
	fmt.Fprintf(w, "Carrito (%d)\n", cart.Count())
}

func stockLabel(p domain.Product) string {
	if !p.InStock() {
		return "Agotado"
	}
	return fmt.Sprintf("Stock: %d", p.Stock)
}

func renderProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No hay productos disponibles")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tPRECIO\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, formatPrice(p.Price), stockLabel(p))
	}
	tw.Flush()
}

func renderProduct(w io.Writer, p domain.Product) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	fmt.Fprintf(w, "%s  %s\n", formatPrice(p.Price), stockLabel(p))
}

func renderUser(w io.Writer, u domain.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	if u.Address != "" {
		fmt.Fprintf(w, "Dirección: %s\n", u.Address)
	}
	if u.Phone != "" {
		fmt.Fprintf(w, "Teléfono: %s\n", u.Phone)
	}
}

func renderCart(w io.Writer, cart domain.Cart) {
	if cart.Len() == 0 {
		fmt.Fprintln(w, "Tu carrito está vacío")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tPRECIO\tCANTIDAD\tSUBTOTAL")
	for _, it := range cart.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			it.ProductID, it.Name, formatPrice(it.Price), it.Quantity, formatPrice(it.Subtotal()))
	}
	tw.Flush()

	s := cart.Summary()
	shipping := "Gratis"
	if !s.Shipping.IsZero() {
		shipping = formatPrice(s.Shipping)
	}
	fmt.Fprintf(w, "Subtotal: %s\nEnvío: %s\nTotal: %s\n", formatPrice(s.Subtotal), shipping, formatPrice(s.Total))
}

func renderOrders(w io.Writer, orders []domain.OrderRecord) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No tienes pedidos")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PEDIDO\tFECHA\tTOTAL\tESTADO")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.CreatedAt, formatPrice(o.Total), o.Status)
	}
	tw.Flush()
}

func renderOrder(w io.Writer, o domain.OrderRecord) {
	fmt.Fprintf(w, "Pedido #%d  %s  %s\n", o.ID, o.Status, o.CreatedAt)
	tw := newTable(w)
	for _, it := range o.Items {
		name := fmt.Sprintf("producto %d", it.ID)
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, it.Quantity, formatPrice(it.Price))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", formatPrice(o.Total))
	if o.Status.Cancellable() {
		fmt.Fprintln(w, "Puede cancelarse")
	}
}
