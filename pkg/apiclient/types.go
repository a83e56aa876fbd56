package apiclient

import "time"

// OrderDateLayout is the backend's timestamp format for orders.
const OrderDateLayout = "2006-01-02 15:04:05"

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the backend's answer to a successful login.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	IsAdmin     bool   `json:"is_admin"`
}

// RegisterProfile is the sign-up form payload.
type RegisterProfile struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Ack is the generic acknowledgement body of mutating endpoints.
type Ack struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id,omitempty"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CartItem is one line of the server-side cart. UnitPrice is the current
// product price, not a price captured when the item was added.
type CartItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url"`
}

// CartSnapshot is the full cart as last reported by the backend.
type CartSnapshot struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type addCartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	TotalAmount     float64 `json:"total_amount"`
	ShippingAddress string  `json:"shipping_address"`
	PaymentMethod   string  `json:"payment_method"`
}

type Order struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// PlacedAt parses Date. The backend reports UTC without a zone suffix.
func (o Order) PlacedAt() (time.Time, error) {
	return time.ParseInLocation(OrderDateLayout, o.Date, time.UTC)
}

type errorBody struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
}
