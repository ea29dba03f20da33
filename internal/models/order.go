package models

import "github.com/shopspring/decimal"

// OrderItem represents a single product entry within an order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is a past order as stored in the orders document.
type Order struct {
	ID      string          `json:"id"`
	UserID  string          `json:"userId"`
	Items   []OrderItem     `json:"items"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"status"`
	Created string          `json:"created"`
}
