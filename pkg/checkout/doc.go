// Package checkout turns the current cart into an order.
//
// PlaceOrder validates the shipping form, sends the cart total plus 10% tax
// with the joined shipping address, and clears the local cart after the
// backend accepts the order. Card details are validated for card payments
// but never leave the process.
package checkout
