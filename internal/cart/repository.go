// Package cart persists per-user carts in the shared carts document and keeps
// a logged-in session's working copy in sync with it.
package cart

import (
	"context"
	"strconv"
	"strings"

	"sweetshop/internal/models"
	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

// Repository maps a user id to the item list of that user's cart.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Load returns the user's items. A user without a cart, or a carts document
// that does not exist yet, yields an empty list.
func (r *Repository) Load(ctx context.Context, userID string) ([]models.CartItem, error) {
	return store.Read(ctx, r.store, store.Carts, func(root xmldoc.M) ([]models.CartItem, error) {
		for _, rec := range root.Map("cartList").Records("cart") {
			if rec.Text("userId") != userID {
				continue
			}
			return itemsFromRecords(rec.Map("items").Records("item")), nil
		}
		return []models.CartItem{}, nil
	})
}

// Save replaces the user's whole item list, creating the cart when needed.
func (r *Repository) Save(ctx context.Context, userID string, items []models.CartItem) error {
	_, err := store.WithDocument(ctx, r.store, store.Carts, func(root xmldoc.M) (struct{}, bool, error) {
		list := root.Ensure("cartList")
		carts := list.Records("cart")

		var userCart xmldoc.M
		for _, rec := range carts {
			if rec.Text("userId") == userID {
				userCart = rec
				break
			}
		}
		if userCart == nil {
			userCart = xmldoc.M{"userId": userID}
			carts = append(carts, userCart)
		}

		userCart["items"] = xmldoc.M{"item": itemsToRecords(items)}
		list.SetRecords("cart", carts)
		return struct{}{}, true, nil
	})
	return err
}

func itemsFromRecords(records []xmldoc.M) []models.CartItem {
	items := make([]models.CartItem, 0, len(records))
	for _, rec := range records {
		id := rec.Text("id")
		if id == "" {
			id = rec.Text("productId")
		}
		quantity, err := strconv.Atoi(rec.Text("quantity"))
		if id == "" || err != nil || quantity < 1 {
			continue
		}
		items = append(items, models.CartItem{
			ProductID: id,
			Name:      rec.Text("name"),
			Price:     models.ParsePrice(rec.Text("price")),
			Image:     rec.Text("image"),
			Quantity:  quantity,
		})
	}
	return items
}

func itemsToRecords(items []models.CartItem) []any {
	records := make([]any, 0, len(items))
	for _, item := range items {
		records = append(records, xmldoc.M{
			"id":       strings.TrimSpace(item.ProductID),
			"name":     item.Name,
			"price":    item.Price.String(),
			"image":    item.Image,
			"quantity": strconv.Itoa(item.Quantity),
		})
	}
	return records
}
