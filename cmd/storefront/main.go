// Command storefront drives the storefront client core from a terminal.
//
//	storefront confirm-age
//	storefront products [-category 1]
//	storefront login -email a@x.com -password secret123
//	storefront add -product 7 -qty 2
//	storefront cart
//	storefront checkout -first Ann -last Lee -address "1 Main St" -city Springfield -state IL -zip 62701 -payment paypal
//	storefront orders
//	storefront logout
//
// Session state persists between invocations through the configured storage
// (a JSON file by default). `storefront fake-backend` serves an in-memory
// backend on :5000 for local use, and `storefront keygen` prints a fresh pair
// of storage encryption keys.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dmitrymomot/storefront"
	"github.com/dmitrymomot/storefront/internal/fakeapi"
	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/checkout"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/money"
	"github.com/dmitrymomot/storefront/pkg/secrets"
	"github.com/dmitrymomot/storefront/pkg/session"
	"github.com/dmitrymomot/storefront/pkg/validator"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: storefront <command> [flags]

commands:
  confirm-age     record the age confirmation
  products        list products (-category id)
  product         show a product and related items (-id)
  login           sign in (-email, -password)
  register        create an account and sign in
  logout          sign out locally
  whoami          show the session status
  cart            show the cart
  add             add to cart (-product, -qty)
  update          change a cart line (-item, -qty)
  remove          remove a cart line (-item)
  checkout        place an order
  orders          list past orders
  keygen          print storage encryption keys
  fake-backend    serve an in-memory backend (-addr)`)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "keygen":
		return keygen(out)
	case "fake-backend":
		return serveFakeBackend(ctx, args, out)
	case "help", "-h", "--help":
		usage(out)
		return nil
	}

	cfg, err := storefront.LoadConfig()
	if err != nil {
		return err
	}
	// out carries command output only.
	app, err := storefront.New(ctx, cfg,
		storefront.WithLogOutput(errOut),
		storefront.WithNavigator(session.NavigatorFunc(
			func(_ context.Context, path string) {
				fmt.Fprintf(errOut, "session expired, sign in again (%s)\n", path)
			},
		)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.ErrorContext(ctx, "shutdown failed", logger.Error(err))
		}
	}()

	// A signed-in session starts a cart fetch; settle it before the command
	// so its result cannot land after ours.
	if err := app.Cart.Wait(ctx); err != nil {
		return err
	}

	c := &cli{app: app, out: out, money: money.USD()}
	switch cmd {
	case "confirm-age":
		return app.Session.SetContentGateAccepted(ctx, true)
	case "products":
		return c.products(ctx, args)
	case "product":
		return c.product(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "logout":
		return app.Session.Logout(ctx)
	case "whoami":
		return c.whoami()
	case "cart":
		return c.cart(ctx)
	case "add":
		return c.add(ctx, args)
	case "update":
		return c.update(ctx, args)
	case "remove":
		return c.remove(ctx, args)
	case "checkout":
		return c.checkout(ctx, args)
	case "orders":
		return c.orders(ctx)
	default:
		return errUsage
	}
}

type cli struct {
	app   *storefront.App
	out   io.Writer
	money *money.Formatter
}

var (
	errAgeGate = errors.New("confirm your age first: storefront confirm-age")
	errSignIn  = errors.New("sign in first: storefront login -email ... -password ...")
)

func (c *cli) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	category := fs.Int64("category", 0, "category id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if !c.app.Session.ContentGateAccepted() {
		return errAgeGate
	}

	page, err := c.app.Catalog.Load(ctx, catalog.CategoryFilter(*category))
	if err != nil {
		return err
	}

	names := make(map[int64]string, len(page.Categories))
	for _, cat := range page.Categories {
		names[cat.ID] = cat.Name
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range page.Products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, names[p.CategoryID], c.money.Format(p.Price))
	}
	return tw.Flush()
}

func (c *cli) product(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	if err := fs.Parse(args); err != nil || *id == 0 {
		return errUsage
	}
	if !c.app.Session.ContentGateAccepted() {
		return errAgeGate
	}

	p, err := c.app.Catalog.Product(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s  %s\n%s\n", p.Name, c.money.Format(p.Price), p.Description)

	related, err := c.app.Catalog.Related(ctx, p, catalog.DefaultRelatedLimit)
	if err != nil {
		return err
	}
	if len(related) > 0 {
		fmt.Fprintln(c.out, "\nYou may also like:")
		for _, r := range related {
			fmt.Fprintf(c.out, "  %d  %s  %s\n", r.ID, r.Name, c.money.Format(r.Price))
		}
	}
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := c.app.Session.Login(ctx, *email, *password); err != nil {
		return err
	}
	return c.whoami()
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var p apiclient.RegisterProfile
	fs.StringVar(&p.Email, "email", "", "account email")
	fs.StringVar(&p.Password, "password", "", "password, at least 8 characters")
	fs.StringVar(&p.FirstName, "first", "", "first name")
	fs.StringVar(&p.LastName, "last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	err := c.app.Session.Register(ctx, p)
	if errors.Is(err, session.ErrAutoLoginFailed) {
		return fmt.Errorf("account created, but signing in failed; try `storefront login`: %w", err)
	}
	if err != nil {
		return err
	}
	return c.whoami()
}

func (c *cli) whoami() error {
	id, ok := c.app.Session.Identity()
	if !ok {
		fmt.Fprintln(c.out, "not signed in")
		return nil
	}
	role := "customer"
	if id.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(c.out, "signed in as %s (#%d, %s)\n", id.Email, id.ID, role)
	return nil
}

func (c *cli) cart(ctx context.Context) error {
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if err := c.app.Cart.Refresh(ctx); err != nil {
		return err
	}
	return c.printCart()
}

func (c *cli) printCart() error {
	snap := c.app.Cart.Snapshot()
	if snap.Empty() {
		fmt.Fprintln(c.out, "your cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE")
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, c.money.Format(it.UnitPrice))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sub, tax, total := checkout.Summarize(snap.Total).Display(c.money)
	fmt.Fprintf(c.out, "\n%d items  subtotal %s  tax %s  total %s\n", snap.ItemCount(), sub, tax, total)
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	product := fs.Int64("product", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil || *product == 0 {
		return errUsage
	}
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if err := c.app.Cart.AddItem(ctx, *product, *qty); err != nil {
		return err
	}
	return c.printCart()
}

func (c *cli) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	item := fs.Int64("item", 0, "cart item id")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil || *item == 0 {
		return errUsage
	}
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if err := c.app.Cart.UpdateItem(ctx, *item, *qty); err != nil {
		return err
	}
	return c.printCart()
}

func (c *cli) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	item := fs.Int64("item", 0, "cart item id")
	if err := fs.Parse(args); err != nil || *item == 0 {
		return errUsage
	}
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if err := c.app.Cart.RemoveItem(ctx, *item); err != nil {
		return err
	}
	return c.printCart()
}

func (c *cli) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var f checkout.ShippingForm
	fs.StringVar(&f.FirstName, "first", "", "first name")
	fs.StringVar(&f.LastName, "last", "", "last name")
	fs.StringVar(&f.Email, "email", "", "contact email (defaults to the account email)")
	fs.StringVar(&f.Address, "address", "", "street address")
	fs.StringVar(&f.City, "city", "", "city")
	fs.StringVar(&f.State, "state", "", "state")
	fs.StringVar(&f.ZipCode, "zip", "", "zip code")
	fs.StringVar(&f.PaymentMethod, "payment", checkout.PaymentCreditCard, "credit_card or paypal")
	fs.StringVar(&f.Card.Name, "card-name", "", "name on card")
	fs.StringVar(&f.Card.Number, "card-number", "", "card number")
	fs.StringVar(&f.Card.Expiry, "card-expiry", "", "expiry, MM/YY")
	fs.StringVar(&f.Card.CVV, "card-cvv", "", "card CVV")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if id, ok := c.app.Session.Identity(); ok && f.Email == "" {
		f.Email = id.Email
	}

	receipt, err := c.app.Checkout.PlaceOrder(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order #%d placed: %s, ships to %s\n",
		receipt.OrderID, c.money.Format(receipt.Summary.Total), receipt.Address)
	return nil
}

func (c *cli) orders(ctx context.Context) error {
	if err := c.requireSignIn(); err != nil {
		return err
	}
	orders, err := c.app.Checkout.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "no orders yet")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tTOTAL\tSTATUS")
	for _, o := range orders {
		date := o.Date
		if !o.Placed.IsZero() {
			date = o.Placed.Local().Format("Jan 2, 2006")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, date, c.money.Format(o.TotalAmount), o.Status)
	}
	return tw.Flush()
}

// requireSignIn fails when there is no session, including one that expired
// during the startup cart fetch.
func (c *cli) requireSignIn() error {
	if !c.app.Session.IsAuthenticated() {
		return errSignIn
	}
	return nil
}

func keygen(out io.Writer) error {
	appKey, err := secrets.GenerateKey()
	if err != nil {
		return err
	}
	deviceKey, err := secrets.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "STOREFRONT_ENCRYPTION_KEY=%s\nSTOREFRONT_DEVICE_KEY=%s\n",
		secrets.EncodeKey(appKey), secrets.EncodeKey(deviceKey))
	return nil
}

func serveFakeBackend(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fake-backend", flag.ContinueOnError)
	addr := fs.String("addr", ":5000", "listen address")
	email := fs.String("email", "a@x.com", "seeded account email")
	password := fs.String("password", "secret123", "seeded account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	backend, err := fakeapi.New()
	if err != nil {
		return err
	}
	if _, err := backend.AddUser(*email, *password, false); err != nil {
		return err
	}

	srv := &http.Server{Addr: *addr, Handler: backend, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "fake backend listening on %s/api (account %s)\n", *addr, *email)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// describe turns an error into one line for the terminal.
func describe(err error) string {
	if ve := validator.Extract(err); len(ve) > 0 {
		return ve.Error()
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiclient.Message(err)
	}
	return err.Error()
}
