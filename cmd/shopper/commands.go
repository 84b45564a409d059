package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/router"
	"github.com/fjod/go_cart/storefront/internal/shop"
)

const usage = `commands:
  view                          show the current view
  go <catalog|cart|orders>      switch view
  login <email> <password>
  signup <email> <password> [full name]
  logout
  me
  products [query]              search the catalog (blank lists everything)
  category <id> [query]
  product <id>
  categories
  cart
  add <product id> [quantity]
  set <item id> <quantity>      0 or less removes the line
  rm <item id>
  clear
  checkout
  orders
  order <id>
`

var errUsage = errors.New("bad arguments, type help")

type cli struct {
	shop *shop.Shop
	out  io.Writer
}

func newCLI(s *shop.Shop, out io.Writer) *cli {
	return &cli{shop: s, out: out}
}

func (c *cli) run(ctx context.Context, args []string) error {
	cmd := strings.ToLower(args[0])
	err := c.dispatch(ctx, cmd, args[1:])
	if c.sessionRejected(cmd, err) {
		if logoutErr := c.shop.Router.Logout(ctx); logoutErr != nil {
			return errors.Join(err, logoutErr)
		}
		fmt.Fprintln(c.out, "session expired, please log in again")
	}
	if errors.Is(err, router.ErrNotAuthenticated) {
		return errors.New("please log in first")
	}
	return err
}

// sessionRejected reports a 401 answer to a request made with a held session.
// Credential failures and 403 ownership refusals leave the session alone.
func (c *cli) sessionRejected(cmd string, err error) bool {
	if gateway.StatusCode(err) != http.StatusUnauthorized {
		return false
	}
	switch cmd {
	case "login", "signup":
		return false
	}
	if c.shop.Router.Current() == router.ViewLogin {
		return false
	}
	_, ok := c.shop.Session.Token()
	return ok
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprint(c.out, usage)
		return nil
	case "view":
		fmt.Fprintln(c.out, c.shop.Router.Current())
		return nil
	case "go":
		if len(args) != 1 {
			return errUsage
		}
		v, err := router.ParseView(args[0])
		if err != nil {
			return err
		}
		return c.shop.Router.Navigate(ctx, v)
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		if err := c.shop.Router.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "logged in")
		return nil
	case "signup":
		return c.signup(ctx, args)
	case "logout":
		if err := c.shop.Router.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "logged out")
		return nil
	case "me":
		u, err := c.shop.Auth.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d %s admin=%t\n", u.ID, u.Email, u.IsAdmin)
		return nil
	}

	view, ok := commandViews[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	if err := c.shop.Router.Navigate(ctx, view); err != nil {
		return err
	}

	switch view {
	case router.ViewCatalog:
		return c.catalog(ctx, cmd, args)
	case router.ViewCart:
		return c.cart(ctx, cmd, args)
	default:
		return c.orders(ctx, cmd, args)
	}
}

var commandViews = map[string]router.View{
	"products":   router.ViewCatalog,
	"category":   router.ViewCatalog,
	"product":    router.ViewCatalog,
	"categories": router.ViewCatalog,
	"cart":       router.ViewCart,
	"add":        router.ViewCart,
	"set":        router.ViewCart,
	"rm":         router.ViewCart,
	"clear":      router.ViewCart,
	"checkout":   router.ViewCart,
	"orders":     router.ViewOrders,
	"order":      router.ViewOrders,
}

func (c *cli) signup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	req := auth.SignupRequest{Email: args[0], Password: args[1]}
	if len(args) > 2 {
		name := strings.Join(args[2:], " ")
		req.FullName = &name
	}
	u, err := c.shop.Auth.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created user %d (%s), now log in\n", u.ID, u.Email)
	return nil
}

func (c *cli) catalog(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		products, err := c.shop.Catalog.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		c.printProducts(products)
	case "category":
		if len(args) < 1 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		products, err := c.shop.Catalog.SearchInCategory(ctx, strings.Join(args[1:], " "), id)
		if err != nil {
			return err
		}
		c.printProducts(products)
	case "product":
		if len(args) != 1 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := c.shop.Catalog.Product(ctx, id)
		if err != nil {
			return err
		}
		c.printProducts([]domain.Product{p})
	case "categories":
		cats, err := c.shop.Catalog.Categories(ctx)
		if err != nil {
			return err
		}
		for _, cat := range cats {
			fmt.Fprintf(c.out, "%d\t%s\n", cat.ID, cat.Name)
		}
	}
	return nil
}

func (c *cli) cart(ctx context.Context, cmd string, args []string) error {
	var (
		current domain.Cart
		err     error
	)

	switch cmd {
	case "cart":
		current, err = c.shop.Cart.Get(ctx)
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		productID, perr := parseID(args[0])
		if perr != nil {
			return perr
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return errUsage
			}
		}
		current, err = c.shop.Cart.AddItem(ctx, productID, cart.ClampQuantity(qty))
	case "set":
		if len(args) != 2 {
			return errUsage
		}
		itemID, perr := parseID(args[0])
		if perr != nil {
			return perr
		}
		qty, aerr := strconv.Atoi(args[1])
		if aerr != nil {
			return errUsage
		}
		if qty > cart.MaxQuantity {
			qty = cart.MaxQuantity
		}
		current, err = c.shop.Cart.UpdateItemQuantity(ctx, itemID, qty)
	case "rm":
		if len(args) != 1 {
			return errUsage
		}
		itemID, perr := parseID(args[0])
		if perr != nil {
			return perr
		}
		current, err = c.shop.Cart.RemoveItem(ctx, itemID)
	case "clear":
		current, err = c.shop.Cart.Clear(ctx)
	case "checkout":
		return c.checkout(ctx)
	}
	if err != nil {
		return err
	}
	c.printCart(current)
	return nil
}

func (c *cli) checkout(ctx context.Context) error {
	current, err := c.shop.Cart.Get(ctx)
	if err != nil {
		return err
	}
	order, err := c.shop.CheckoutNonEmpty(ctx, &current)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %d placed, total %s\n", order.ID, money(order.Total.StringFixed(2)))

	// the cart service emptied the cart; show it as it is now
	current, err = c.shop.Cart.Get(ctx)
	if err != nil {
		return err
	}
	c.printCart(current)
	return nil
}

func (c *cli) orders(ctx context.Context, cmd string, args []string) error {
	if cmd == "order" {
		if len(args) != 1 {
			return errUsage
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		o, err := c.shop.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		c.printOrders([]domain.Order{o}, true)
		return nil
	}

	list, err := c.shop.Orders.MyOrders(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "no orders yet")
		return nil
	}
	c.printOrders(list, false)
	return nil
}

func (c *cli) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.out, "no products found")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tPRICE\tVAT")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s%%\n", p.ID, p.Name, deref(p.Size), money(p.Price.StringFixed(2)), p.VATRate.StringFixed(2))
	}
	tw.Flush()
}

func (c *cli) printCart(current domain.Cart) {
	if current.IsEmpty() {
		fmt.Fprintln(c.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tUNIT\tGROSS")
	for _, it := range current.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.Product.Name, it.Quantity, money(it.UnitPrice.StringFixed(2)), money(it.LineGross.StringFixed(2)))
	}
	tw.Flush()
	fmt.Fprintf(c.out, "net %s  vat %s  total %s\n",
		money(current.Totals.Net.StringFixed(2)),
		money(current.Totals.VAT.StringFixed(2)),
		money(current.Totals.Gross.StringFixed(2)))
}

func (c *cli) printOrders(list []domain.Order, withItems bool) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "%d\t%s [%s]\t%s\n", o.ID, o.Status, o.Status.Kind().Badge(), money(o.Total.StringFixed(2)))
		if !withItems {
			continue
		}
		for _, it := range o.Items {
			fmt.Fprintf(tw, "\t%dx %s\t%s\n", it.Quantity, deref(it.ProductName), money(it.UnitPrice.StringFixed(2)))
		}
	}
	tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func money(amount string) string {
	return "€" + amount
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
