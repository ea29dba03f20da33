package models

// Category groups catalog products in display order.
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"product"`
}
