package handlers

import (
	"testing"

	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

func line(id, price string, qty int) models.CartItem {
	return models.CartItem{ProductID: id, Name: id, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestCartTotalSumsLines(t *testing.T) {
	items := []models.CartItem{line("a", "2.50", 3), line("b", "0.10", 3), line("c", "1.333", 1)}

	if got := cartTotal(items).StringFixed(2); got != "9.13" {
		t.Fatalf("expected total 9.13, got %s", got)
	}
	if got := cartCount(items); got != 7 {
		t.Fatalf("expected 7 units, got %d", got)
	}
}

func TestCartTotalOfEmptyCart(t *testing.T) {
	view := newCartView(nil)
	if view.CartTotal != "0.00" {
		t.Fatalf("expected 0.00, got %s", view.CartTotal)
	}
	if view.Cart == nil || len(view.Cart) != 0 {
		t.Fatalf("expected an empty, non-nil cart, got %#v", view.Cart)
	}
}

func TestCartViewFormatsPrices(t *testing.T) {
	view := newCartView([]models.CartItem{line("a", "2.5", 2)})

	if len(view.Cart) != 1 {
		t.Fatalf("expected one line, got %d", len(view.Cart))
	}
	got := view.Cart[0]
	if got.Price != "2.50" || got.LineTotal != "5.00" {
		t.Fatalf("expected 2.50 x 2 = 5.00, got %s / %s", got.Price, got.LineTotal)
	}
	if view.CartTotal != "5.00" || view.CartCount != 2 {
		t.Fatalf("unexpected totals %+v", view)
	}
}
