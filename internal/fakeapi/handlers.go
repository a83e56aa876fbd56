package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

const orderDateLayout = "2006-01-02 15:04:05"

// OrderRecord is what the backend stored for a placed order.
type OrderRecord struct {
	ID              int64
	TotalAmount     float64
	ShippingAddress string
	PaymentMethod   string
	Status          string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, v any) bool {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v) == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decodeJSON(r, &in) || in.Email == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	_, err := s.AddUser(in.Email, in.Password, false)
	if errors.Is(err, errUserExists) {
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not create user")
		return
	}

	s.mu.Lock()
	u := s.users[in.Email]
	u.firstName, u.lastName = in.FirstName, in.LastName
	s.mu.Unlock()

	writeMessage(w, http.StatusCreated, "User created successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(r, &in) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(u.id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user_id":      u.id,
		"is_admin":     u.isAdmin,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("category_id")

	s.mu.Lock()
	all := s.sortedProducts()
	s.mu.Unlock()

	if filter == "" {
		writeJSON(w, http.StatusOK, all)
		return
	}

	out := []Product{}
	categoryID, err := strconv.ParseInt(filter, 10, 64)
	if err == nil {
		for _, p := range all {
			if p.CategoryID == categoryID {
				out = append(out, p)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]Category{}, s.categories...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

type cartItemView struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	items := []cartItemView{}
	total := 0.0
	for _, line := range s.carts[userID] {
		p := s.products[line.productID]
		items = append(items, cartItemView{
			ID:        line.id,
			ProductID: line.productID,
			Quantity:  line.quantity,
			Price:     p.Price,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
		})
		total += p.Price * float64(line.quantity)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": math.Round(total*100) / 100,
	})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if !decodeJSON(r, &in) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[in.ProductID]; !ok {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	for _, line := range s.carts[userID] {
		if line.productID == in.ProductID {
			line.quantity += in.Quantity
			writeMessage(w, http.StatusOK, "Item added to cart")
			return
		}
	}

	s.nextItemID++
	s.carts[userID] = append(s.carts[userID], &cartLine{id: s.nextItemID, productID: in.ProductID, quantity: in.Quantity})
	writeMessage(w, http.StatusOK, "Item added to cart")
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ItemID   int64 `json:"item_id"`
		Quantity int   `json:"quantity"`
	}
	if !decodeJSON(r, &in) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[userID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Cart not found")
		return
	}
	for _, line := range lines {
		if line.id == in.ItemID {
			line.quantity = in.Quantity
			writeMessage(w, http.StatusOK, "Cart updated")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Item not found in cart")
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.URL.Query().Get("item_id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "item_id is required")
		return
	}
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[userID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Cart not found")
		return
	}
	for i, line := range lines {
		if line.id == itemID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			writeMessage(w, http.StatusOK, "Item removed from cart")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Item not found in cart")
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TotalAmount     float64 `json:"total_amount"`
		ShippingAddress string  `json:"shipping_address"`
		PaymentMethod   string  `json:"payment_method"`
	}
	if !decodeJSON(r, &in) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.carts[userID]) == 0 {
		writeMessage(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	s.nextOrderID++
	s.orders[userID] = append(s.orders[userID], &order{
		ID:              s.nextOrderID,
		Date:            s.now().UTC().Format(orderDateLayout),
		TotalAmount:     in.TotalAmount,
		Status:          "pending",
		shippingAddress: in.ShippingAddress,
		paymentMethod:   in.PaymentMethod,
	})
	// The backend deactivates the cart; the next add starts a fresh one.
	delete(s.carts, userID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Order placed successfully",
		"order_id": s.nextOrderID,
	})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	out := make([]order, 0, len(s.orders[userID]))
	for _, o := range s.orders[userID] {
		out = append(out, *o)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// Orders returns what was stored for the user's orders.
func (s *Server) Orders(userID int64) []OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]OrderRecord, 0, len(s.orders[userID]))
	for _, o := range s.orders[userID] {
		out = append(out, OrderRecord{
			ID:              o.ID,
			TotalAmount:     o.TotalAmount,
			ShippingAddress: o.shippingAddress,
			PaymentMethod:   o.paymentMethod,
			Status:          o.Status,
		})
	}
	return out
}
