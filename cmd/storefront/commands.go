package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notice"
	"github.com/fjod/go_cart/storefront/internal/service"
)

const featuredCount = 6

// commands wires the state on each command rather than on the app, so help
// and usage output never touch the store.
func (sf *storefront) commands() []*cli.Command {
	cmds := []*cli.Command{
		{
			Name:  "products",
			Usage: "list the catalog",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "available", Usage: "only products with stock"},
				&cli.StringFlag{Name: "search", Usage: "filter by name"},
				&cli.BoolFlag{Name: "featured", Usage: fmt.Sprintf("only the first %d products", featuredCount)},
			},
			Action: sf.products,
		},
		{
			Name:      "product",
			Usage:     "show one product",
			ArgsUsage: "<id>",
			Action:    sf.product,
		},
		{
			Name:  "login",
			Usage: "log in and remember the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
			},
			Action: sf.login,
		},
		{
			Name:  "register",
			Usage: "create an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
				&cli.StringFlag{Name: "confirm", Required: true, Usage: "password again"},
				&cli.StringFlag{Name: "address"},
				&cli.StringFlag{Name: "phone"},
			},
			Action: sf.register,
		},
		{
			Name:   "logout",
			Usage:  "forget the session",
			Action: sf.logout,
		},
		{
			Name:   "whoami",
			Usage:  "show the logged-in user",
			Action: sf.whoami,
		},
		{
			Name:   "cart",
			Usage:  "show the cart and its totals",
			Action: sf.showCart,
		},
		{
			Name:      "add",
			Usage:     "add one unit of a product to the cart",
			ArgsUsage: "<product-id>",
			Action:    sf.add,
		},
		{
			Name:      "update",
			Usage:     "set the quantity of a cart item (0 removes it)",
			ArgsUsage: "<product-id> <quantity>",
			Action:    sf.update,
		},
		{
			Name:      "remove",
			Usage:     "remove a product from the cart",
			ArgsUsage: "<product-id>",
			Action:    sf.remove,
		},
		{
			Name:   "clear",
			Usage:  "empty the cart",
			Action: sf.clear,
		},
		{
			Name:   "checkout",
			Usage:  "place an order with the cart contents",
			Action: sf.placeOrder,
		},
		{
			Name:   "orders",
			Usage:  "list your orders",
			Action: sf.orders,
		},
		{
			Name:      "order",
			Usage:     "show one order",
			ArgsUsage: "<order-id>",
			Action:    sf.order,
		},
		{
			Name:      "cancel",
			Usage:     "cancel a pending order",
			ArgsUsage: "<order-id>",
			Action:    sf.cancel,
		},
	}
	for _, cmd := range cmds {
		cmd.Before = sf.open
	}
	return cmds
}

func (sf *storefront) products(c *cli.Context) error {
	ctx := c.Context
	var (
		products []domain.Product
		err      error
	)

	switch {
	case c.IsSet("search"):
		products, err = sf.catalog.Search(ctx, c.String("search"))
	case c.Bool("available"):
		products, err = sf.catalog.Available(ctx)
	case c.Bool("featured"):
		products, err = sf.catalog.Featured(ctx, featuredCount)
	default:
		products, err = sf.catalog.ListProducts(ctx)
	}
	if err != nil {
		return sf.report(notice.OpListProducts, err)
	}
	renderProducts(sf.out, products)
	return nil
}

func (sf *storefront) product(c *cli.Context) error {
	id, err := argID(c, 0, "product id")
	if err != nil {
		return err
	}
	p, err := sf.catalog.GetProduct(c.Context, id)
	if err != nil {
		return sf.report(notice.OpListProducts, err)
	}
	renderProduct(sf.out, p)
	return nil
}

func (sf *storefront) login(c *cli.Context) error {
	user, err := sf.session.Login(c.Context, c.String("email"), c.String("password"))
	if err == nil {
		fmt.Fprintf(sf.out, "Hola, %s\n", user.Name)
	}
	return sf.report(notice.OpLogin, err)
}

func (sf *storefront) register(c *cli.Context) error {
	err := sf.session.Register(c.Context, service.RegisterRequest{
		Name:            c.String("name"),
		Email:           c.String("email"),
		Password:        c.String("password"),
		ConfirmPassword: c.String("confirm"),
		Address:         c.String("address"),
		Phone:           c.String("phone"),
	})
	return sf.report(notice.OpRegister, err)
}

func (sf *storefront) logout(c *cli.Context) error {
	sf.session.Logout(c.Context)
	return sf.report(notice.OpLogout, nil)
}

func (sf *storefront) whoami(*cli.Context) error {
	user := sf.session.Current()
	if user == nil {
		fmt.Fprintln(sf.out, "No has iniciado sesión")
		return nil
	}
	renderUser(sf.out, *user)
	return nil
}

func (sf *storefront) showCart(*cli.Context) error {
	renderCart(sf.out, sf.cart.Cart())
	return nil
}

func (sf *storefront) add(c *cli.Context) error {
	id, err := argID(c, 0, "product id")
	if err != nil {
		return err
	}
	return sf.report(notice.OpAddToCart, sf.cart.Add(c.Context, id))
}

func (sf *storefront) update(c *cli.Context) error {
	id, err := argID(c, 0, "product id")
	if err != nil {
		return err
	}
	if c.NArg() < 2 {
		return cli.Exit("missing quantity", 2)
	}
	return sf.report(notice.OpUpdateQuantity, sf.cart.UpdateQuantity(c.Context, id, c.Args().Get(1)))
}

func (sf *storefront) remove(c *cli.Context) error {
	id, err := argID(c, 0, "product id")
	if err != nil {
		return err
	}
	return sf.report(notice.OpRemoveFromCart, sf.cart.Remove(c.Context, id))
}

func (sf *storefront) clear(c *cli.Context) error {
	return sf.report(notice.OpClearCart, sf.cart.Clear(c.Context))
}

func (sf *storefront) placeOrder(c *cli.Context) error {
	rec, err := sf.checkout.Checkout(c.Context)
	if err == nil && rec.ID != 0 {
		fmt.Fprintf(sf.out, "Pedido #%d\n", rec.ID)
	}
	return sf.report(notice.OpCheckout, err)
}

func (sf *storefront) orders(c *cli.Context) error {
	list, err := sf.checkout.History(c.Context)
	if err != nil {
		return sf.report(notice.OpListOrders, err)
	}
	renderOrders(sf.out, list)
	return nil
}

func (sf *storefront) order(c *cli.Context) error {
	id, err := argID(c, 0, "order id")
	if err != nil {
		return err
	}
	rec, err := sf.checkout.Get(c.Context, id)
	if err != nil {
		return sf.report(notice.OpListOrders, err)
	}
	renderOrder(sf.out, rec)
	return nil
}

func (sf *storefront) cancel(c *cli.Context) error {
	id, err := argID(c, 0, "order id")
	if err != nil {
		return err
	}
	_, err = sf.checkout.Cancel(c.Context, id)
	return sf.report(notice.OpCancelOrder, err)
}

// report prints the notice for op and turns a failure into exit status 1.
func (sf *storefront) report(op notice.Op, err error) error {
	n := notice.FromError(op, err)
	renderNotice(sf.out, n)
	if err != nil {
		sf.logger.Printf("%v", err)
		return cli.Exit("", 1)
	}
	return nil
}

func argID(c *cli.Context, pos int, what string) (int64, error) {
	raw := c.Args().Get(pos)
	if raw == "" {
		return 0, cli.Exit(fmt.Sprintf("missing %s", what), 2)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid %s %q", what, raw), 2)
	}
	return id, nil
}
