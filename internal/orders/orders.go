// Package orders reads past orders from the orders document.
package orders

import (
	"context"
	"strconv"

	"sweetshop/internal/models"
	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

type Reader struct {
	store *store.Store
}

func NewReader(s *store.Store) *Reader {
	return &Reader{store: s}
}

// ListByUser returns the user's orders in document order. A missing orders
// document means no orders.
func (r *Reader) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return store.Read(ctx, r.store, store.Orders, func(root xmldoc.M) ([]models.Order, error) {
		out := []models.Order{}
		for _, rec := range root.Records("order") {
			if rec.Text("userId") != userID {
				continue
			}
			out = append(out, orderFromRecord(rec))
		}
		return out, nil
	})
}

func orderFromRecord(rec xmldoc.M) models.Order {
	order := models.Order{
		ID:      rec.Text("id"),
		UserID:  rec.Text("userId"),
		Total:   models.ParsePrice(rec.Text("total")),
		Status:  rec.Text("status"),
		Created: rec.Text("created"),
		Items:   []models.OrderItem{},
	}
	for _, item := range rec.Map("items").Records("item") {
		qty, _ := strconv.Atoi(item.Text("quantity"))
		id := item.Text("productId")
		if id == "" {
			id = item.Text("id")
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: id,
			Name:      item.Text("name"),
			Price:     models.ParsePrice(item.Text("price")),
			Quantity:  qty,
		})
	}
	return order
}
