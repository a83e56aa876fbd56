package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Authenticate exchanges credentials for an access token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	if err := c.call(ctx, "auth.login", http.MethodPost, "/login", nil, credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: ErrDecode, Op: "auth.login", StatusCode: http.StatusOK, Message: "missing access token"}
	}
	return &out, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, profile RegisterProfile) (*Ack, error) {
	var out Ack
	if err := c.call(ctx, "auth.register", http.MethodPost, "/register", nil, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts returns all products, or those of one category when
// categoryID is non-empty.
func (c *Client) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	var query url.Values
	if categoryID != "" {
		query = url.Values{"category_id": {categoryID}}
	}

	var out []Product
	if err := c.call(ctx, "catalog.products", http.MethodGet, "/products", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.call(ctx, "catalog.categories", http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context) (*CartSnapshot, error) {
	var out CartSnapshot
	if err := c.call(ctx, "cart.get", http.MethodGet, "/cart", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []CartItem{}
	}
	return &out, nil
}

// AddCartItem adds quantity units of a product. The backend merges with an
// existing line for the same product.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) (*Ack, error) {
	var out Ack
	in := addCartItem{ProductID: productID, Quantity: quantity}
	if err := c.call(ctx, "cart.add", http.MethodPost, "/cart/add", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*Ack, error) {
	var out Ack
	in := updateCartItem{ItemID: itemID, Quantity: quantity}
	if err := c.call(ctx, "cart.update", http.MethodPut, "/cart/update", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) (*Ack, error) {
	var out Ack
	query := url.Values{"item_id": {strconv.FormatInt(itemID, 10)}}
	if err := c.call(ctx, "cart.remove", http.MethodDelete, "/cart/remove", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout places an order from the server-side cart.
func (c *Client) Checkout(ctx context.Context, order OrderRequest) (*Ack, error) {
	var out Ack
	if err := c.call(ctx, "order.checkout", http.MethodPost, "/checkout", nil, order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.call(ctx, "order.list", http.MethodGet, "/user/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
