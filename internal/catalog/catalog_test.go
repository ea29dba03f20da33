package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/store"
)

const productsXML = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <category name="Chocolate">
    <product>
      <id>p1</id><n>Dark Truffle</n><description>Rich dark chocolate</description>
      <price>2.50</price><image>truffle.jpg</image><stock>3</stock>
    </product>
  </category>
  <category name="Candy">
    <product>
      <id>p2</id><n>Gummy Bears</n><description>Chewy</description>
      <price>1.20</price><image>gummy.jpg</image><stock>0</stock>
    </product>
    <product>
      <id>p3</id><n>Lollipop</n><description>Swirl</description>
      <price>oops</price><image>lolly.jpg</image><stock>-2</stock>
    </product>
  </category>
</products>`

func newCatalog(t *testing.T, products string) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	if products != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "products.xml"), []byte(products), 0o644))
	}
	fs, err := store.NewFileStorage(dir)
	require.NoError(t, err)
	return New(store.New(fs)), dir
}

func TestFindProduct(t *testing.T) {
	c, _ := newCatalog(t, productsXML)
	ctx := context.Background()

	p, err := c.FindProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Dark Truffle", p.Name)
	assert.Equal(t, "2.5", p.Price.String())
	assert.Equal(t, 3, p.Stock)
	assert.True(t, p.InStock)
	assert.Equal(t, "Chocolate", p.Category)

	p, err = c.FindProduct(ctx, "p3")
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero(), "unparseable price reads as zero")
	assert.Equal(t, 0, p.Stock, "negative stock reads as zero")

	_, err = c.FindProduct(ctx, "nope")
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = c.FindProduct(ctx, "")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestFindProductSingleCategorySingleProduct(t *testing.T) {
	c, _ := newCatalog(t, `<products><category name="Only"><product id="solo"><n>Solo</n><stock>1</stock></product></category></products>`)

	p, err := c.FindProduct(context.Background(), "solo")
	require.NoError(t, err)
	assert.Equal(t, "Solo", p.Name)
}

func TestMissingProductsDocument(t *testing.T) {
	c, _ := newCatalog(t, "")

	_, err := c.FindProduct(context.Background(), "p1")
	require.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestProductsFilterAndPagination(t *testing.T) {
	c, _ := newCatalog(t, productsXML)
	ctx := context.Background()

	all, total, err := c.Products(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	candy, total, err := c.Products(ctx, Filter{Category: "candy"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "p2", candy[0].ID)

	found, _, err := c.Products(ctx, Filter{Search: "CHOCOLATE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)

	page, total, err := c.Products(ctx, Filter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "p3", page[0].ID)

	page, _, err = c.Products(ctx, Filter{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestProductsPaginationWithHugeValues(t *testing.T) {
	c, _ := newCatalog(t, productsXML)
	ctx := context.Background()

	page, total, err := c.Products(ctx, Filter{Page: 1 << 62, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, page)

	page, _, err = c.Products(ctx, Filter{Page: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, _, err = c.Products(ctx, Filter{Page: math.MaxInt, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestCategories(t *testing.T) {
	c, _ := newCatalog(t, productsXML)

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Candy", categories[1].Name)
	assert.Len(t, categories[1].Products, 2)
}

func TestVerifyReportsMissingImages(t *testing.T) {
	c, dir := newCatalog(t, productsXML)
	images := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(images, "truffle.jpg"), []byte("x"), 0o644))

	report, err := c.Verify(context.Background(), images)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Categories)
	assert.Equal(t, 3, report.Products)
	assert.ElementsMatch(t, []MissingImage{
		{Product: "Gummy Bears", Image: "gummy.jpg"},
		{Product: "Lollipop", Image: "lolly.jpg"},
	}, report.MissingImages)
}

func TestVerifyRejectsBrokenStructure(t *testing.T) {
	cases := map[string]string{
		"no categories":        `<products></products>`,
		"unnamed category":     `<products><category><product><id>p1</id></product></category></products>`,
		"product missing name": `<products><category name="A"><product><id>p1</id><description>d</description><price>1</price><image>a.jpg</image><stock>1</stock></product></category></products>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			c, dir := newCatalog(t, doc)
			_, err := c.Verify(context.Background(), filepath.Join(dir, "images"))
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestSafeImageName(t *testing.T) {
	assert.True(t, safeImageName("truffle.jpg"))
	assert.False(t, safeImageName("../secret.jpg"))
	assert.False(t, safeImageName("sub/dir.jpg"))
	assert.False(t, safeImageName(""))
	assert.False(t, safeImageName(".."))
}
