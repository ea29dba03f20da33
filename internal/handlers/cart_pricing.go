package handlers

import (
	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

type cartLine struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type cartView struct {
	Cart      []cartLine `json:"cart"`
	CartTotal string     `json:"cartTotal"`
	CartCount int        `json:"cartCount"`
}

// cartTotal is the sum of price times quantity, rounded to cents.
func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(models.PricePlaces)
}

// cartCount is the number of units in the cart, not the number of lines.
func cartCount(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func newCartView(items []models.CartItem) cartView {
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLine{
			ID:        item.ProductID,
			Name:      item.Name,
			Price:     item.Price.StringFixed(models.PricePlaces),
			Image:     item.Image,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(models.PricePlaces),
		})
	}
	return cartView{
		Cart:      lines,
		CartTotal: cartTotal(items).StringFixed(models.PricePlaces),
		CartCount: cartCount(items),
	}
}
