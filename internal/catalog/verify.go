package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

// ErrInvalidCatalog reports a products document without the expected structure.
var ErrInvalidCatalog = errors.New("invalid products document")

var requiredProductFields = []string{"id", "n", "description", "price", "image", "stock"}

type MissingImage struct {
	Product string `json:"product"`
	Image   string `json:"image"`
}

// Report summarizes a verified catalog. Missing images are warnings only.
type Report struct {
	Categories    int            `json:"categories"`
	Products      int            `json:"products"`
	ImagesDir     string         `json:"imagesDir"`
	MissingImages []MissingImage `json:"missingImages"`
}

type imageRef struct {
	product string
	image   string
}

// Verify checks the structure of the products document and that every
// product image exists in imagesDir, creating imagesDir when it is missing.
func (c *Catalog) Verify(ctx context.Context, imagesDir string) (Report, error) {
	report := Report{ImagesDir: imagesDir, MissingImages: []MissingImage{}}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return report, fmt.Errorf("create images dir: %w", err)
	}

	var (
		refs     []imageRef
		existing = map[string]struct{}{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = store.Read(gctx, c.store, store.Products, func(root xmldoc.M) ([]imageRef, error) {
			return checkStructure(root, &report)
		})
		return err
	})
	g.Go(func() error {
		entries, err := os.ReadDir(imagesDir)
		if err != nil {
			return fmt.Errorf("read images dir: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				existing[entry.Name()] = struct{}{}
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, ref := range refs {
		if !safeImageName(ref.image) {
			report.MissingImages = append(report.MissingImages, MissingImage{Product: ref.product, Image: ref.image})
			continue
		}
		if _, ok := existing[ref.image]; !ok {
			report.MissingImages = append(report.MissingImages, MissingImage{Product: ref.product, Image: ref.image})
		}
	}
	return report, nil
}

func checkStructure(root xmldoc.M, report *Report) ([]imageRef, error) {
	if _, ok := root["category"]; !ok {
		return nil, fmt.Errorf("%w: expected root element \"products\" with \"category\" elements", ErrInvalidCatalog)
	}

	var refs []imageRef
	categories := root.Records("category")
	for ci, category := range categories {
		name := category.Text("name")
		if name == "" {
			return nil, fmt.Errorf("%w: category at index %d is missing 'name'", ErrInvalidCatalog, ci)
		}
		products := category.Records("product")
		for pi, product := range products {
			for _, field := range requiredProductFields {
				if product.Text(field) == "" {
					return nil, fmt.Errorf("%w: product %d in category %q is missing required field: %s", ErrInvalidCatalog, pi, name, field)
				}
			}
			refs = append(refs, imageRef{product: product.Text("n"), image: product.Text("image")})
		}
		report.Products += len(products)
	}
	report.Categories = len(categories)
	return refs, nil
}

// safeImageName accepts bare file names only, so a product can never point
// outside the images directory.
func safeImageName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && trimmed == filepath.Base(trimmed) && trimmed != "." && trimmed != ".."
}
