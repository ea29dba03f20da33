// Package catalog resolves products from the read-only products document.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sweetshop/internal/models"
	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog re-reads the products document on every call.
type Catalog struct {
	store *store.Store
}

func New(s *store.Store) *Catalog {
	return &Catalog{store: s}
}

// FindProduct returns the first product with the given id.
func (c *Catalog) FindProduct(ctx context.Context, id string) (models.Product, error) {
	id = strings.TrimSpace(id)
	return store.Read(ctx, c.store, store.Products, func(root xmldoc.M) (models.Product, error) {
		if id != "" {
			for _, category := range root.Records("category") {
				for _, rec := range category.Records("product") {
					if rec.Text("id") == id {
						return productFromRecord(rec, category.Text("name")), nil
					}
				}
			}
		}
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	})
}

// Categories returns every category with its products, in document order.
func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	return store.Read(ctx, c.store, store.Products, func(root xmldoc.M) ([]models.Category, error) {
		records := root.Records("category")
		categories := make([]models.Category, 0, len(records))
		for _, category := range records {
			name := category.Text("name")
			productRecords := category.Records("product")
			products := make([]models.Product, 0, len(productRecords))
			for _, rec := range productRecords {
				products = append(products, productFromRecord(rec, name))
			}
			categories = append(categories, models.Category{Name: name, Products: products})
		}
		return categories, nil
	})
}

// Filter narrows a flat product listing. Page and Limit are applied only
// when both are positive.
type Filter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Products lists products across categories and returns the requested page
// together with the number of products that matched.
func (c *Catalog) Products(ctx context.Context, f Filter) ([]models.Product, int, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, 0, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)

	matched := make([]models.Product, 0)
	for _, cat := range categories {
		if category != "" && !strings.EqualFold(cat.Name, category) {
			continue
		}
		for _, p := range cat.Products {
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				continue
			}
			matched = append(matched, p)
		}
	}

	total := len(matched)
	if f.Page > 0 && f.Limit > 0 {
		if f.Page-1 > total/f.Limit {
			return []models.Product{}, total, nil
		}
		start := (f.Page - 1) * f.Limit
		end := total
		if f.Limit < total-start {
			end = start + f.Limit
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func productFromRecord(rec xmldoc.M, category string) models.Product {
	name := rec.Text("n")
	if name == "" {
		name = rec.Text("name")
	}

	stock, err := strconv.Atoi(rec.Text("stock"))
	if err != nil || stock < 0 {
		stock = 0
	}

	return models.Product{
		ID:          rec.Text("id"),
		Name:        name,
		Description: rec.Text("description"),
		Price:       models.ParsePrice(rec.Text("price")),
		Image:       rec.Text("image"),
		Stock:       stock,
		InStock:     stock > 0,
		Category:    category,
	}
}
