package orders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/store"
)

func newReader(t *testing.T, doc string) *Reader {
	t.Helper()
	dir := t.TempDir()
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.xml"), []byte(doc), 0o644))
	}
	fs, err := store.NewFileStorage(dir)
	require.NoError(t, err)
	return NewReader(store.New(fs))
}

func TestListByUserWithoutDocument(t *testing.T) {
	r := newReader(t, "")

	orders, err := r.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestListByUserFilters(t *testing.T) {
	r := newReader(t, `<orders>
  <order><id>o1</id><userId>1</userId><total>7.50</total><status>shipped</status><created>2024-01-02</created>
    <items>
      <item><productId>p1</productId><name>Truffle</name><price>2.50</price><quantity>1</quantity></item>
      <item><id>p2</id><name>Bar</name><price>2.50</price><quantity>2</quantity></item>
    </items>
  </order>
  <order><id>o2</id><userId>2</userId><total>1</total></order>
  <order id="o3" userId="1"><total>3</total></order>
</orders>`)

	orders, err := r.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "o1", first.ID)
	assert.Equal(t, "shipped", first.Status)
	assert.Equal(t, "7.5", first.Total.String())
	require.Len(t, first.Items, 2)
	assert.Equal(t, "p1", first.Items[0].ProductID)
	assert.Equal(t, "p2", first.Items[1].ProductID)
	assert.Equal(t, 2, first.Items[1].Quantity)

	assert.Equal(t, "o3", orders[1].ID)
	assert.Empty(t, orders[1].Items)
}

func TestListByUserSingleOrder(t *testing.T) {
	r := newReader(t, `<orders><order><id>o1</id><userId>4</userId></order></orders>`)

	orders, err := r.ListByUser(context.Background(), "4")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
}
