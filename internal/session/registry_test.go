package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/cart"
	"sweetshop/internal/catalog"
	"sweetshop/internal/models"
	"sweetshop/internal/store"
)

const testProducts = `<products>
  <category name="Fudge">
    <product><id>p1</id><n>Vanilla fudge</n><description>d</description><price>3.00</price><image>f.jpg</image><stock>5</stock></product>
  </category>
</products>`

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	registry *Registry
	repo     *cart.Repository
	clock    *clock
	carts    *switchableCarts
}

// switchableCarts fails every Save while fail is set.
type switchableCarts struct {
	cart.Carts
	fail bool
}

var errWriteRefused = errors.New("write refused")

func (c *switchableCarts) Save(ctx context.Context, userID string, items []models.CartItem) error {
	if c.fail {
		return errWriteRefused
	}
	return c.Carts.Save(ctx, userID, items)
}

func newFixture(t *testing.T, ttl time.Duration) fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.xml"), []byte(testProducts), 0o644))
	fs, err := store.NewFileStorage(dir)
	require.NoError(t, err)
	s := store.New(fs)

	repo := cart.NewRepository(s)
	carts := &switchableCarts{Carts: repo}
	products := catalog.New(s)
	registry := NewRegistry(func() *cart.Session {
		return cart.NewSession(carts, products, zerolog.Nop())
	}, ttl, zerolog.Nop())

	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	registry.now = c.now
	return fixture{registry: registry, repo: repo, clock: c, carts: carts}
}

var alice = models.SessionUser{ID: "1", Username: "alice", RoleID: "2"}

func TestOpenHydratesFromStoredCart(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, f.repo.Save(ctx, "1", []models.CartItem{{ProductID: "p1", Name: "Vanilla fudge", Quantity: 2}}))

	e, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, cart.Hydrated, e.Cart.State())
	require.Len(t, e.Cart.Items(), 1)
	assert.Equal(t, 2, e.Cart.Items()[0].Quantity)

	got, ok := f.registry.Get(ctx, e.ID)
	require.True(t, ok)
	assert.Same(t, e, got)
}

func TestOpenGivesDistinctIDs(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	a, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	b, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, f.registry.Len())
}

func TestCloseFlushesAndForgets(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	e, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, e.Cart.Add(ctx, "p1", 2))

	require.NoError(t, f.registry.Close(ctx, e.ID))
	assert.Equal(t, cart.Destroyed, e.Cart.State())
	_, ok := f.registry.Get(ctx, e.ID)
	assert.False(t, ok)
	require.ErrorIs(t, f.registry.Close(ctx, e.ID), ErrSessionNotFound)

	items, err := f.repo.Load(ctx, "1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestFailedCloseKeepsSession(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	e, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)

	f.carts.fail = true
	require.ErrorIs(t, f.registry.Close(ctx, e.ID), errWriteRefused)
	_, ok := f.registry.Get(ctx, e.ID)
	assert.True(t, ok)

	f.carts.fail = false
	require.NoError(t, f.registry.Close(ctx, e.ID))
}

func TestResume(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	e, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)

	same, err := f.registry.Resume(ctx, e.ID, alice)
	require.NoError(t, err)
	assert.Same(t, e, same)

	_, err = f.registry.Resume(ctx, e.ID, models.SessionUser{ID: "2"})
	require.ErrorIs(t, err, ErrSessionNotFound)

	restored, err := f.registry.Resume(ctx, "sid-from-an-earlier-run", alice)
	require.NoError(t, err)
	assert.Equal(t, "sid-from-an-earlier-run", restored.ID)
	assert.Equal(t, cart.Hydrated, restored.Cart.State())
}

func TestIdleSessionsExpire(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	idle, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, idle.Cart.Add(ctx, "p1", 1))
	busy, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)

	f.clock.advance(45 * time.Second)
	_, ok := f.registry.Get(ctx, busy.ID)
	require.True(t, ok)
	f.clock.advance(30 * time.Second)

	assert.Equal(t, 1, f.registry.Sweep(ctx))
	assert.Equal(t, cart.Destroyed, idle.Cart.State())
	_, ok = f.registry.Get(ctx, busy.ID)
	assert.True(t, ok)

	f.clock.advance(2 * time.Minute)
	_, ok = f.registry.Get(ctx, busy.ID)
	assert.False(t, ok, "expired on access")
	assert.Equal(t, 0, f.registry.Len())
}

func TestSweepRetriesFailedFlush(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	_, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	f.clock.advance(2 * time.Minute)

	f.carts.fail = true
	assert.Equal(t, 0, f.registry.Sweep(ctx))
	assert.Equal(t, 1, f.registry.Len())

	f.carts.fail = false
	assert.Equal(t, 1, f.registry.Sweep(ctx))
	assert.Equal(t, 0, f.registry.Len())
}

func TestCloseAll(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := f.registry.Open(ctx, alice)
		require.NoError(t, err)
		require.NoError(t, e.Cart.Add(ctx, "p1", 1))
	}

	require.NoError(t, f.registry.CloseAll(ctx))
	assert.Equal(t, 0, f.registry.Len())

	f.carts.fail = true
	_, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	require.ErrorIs(t, f.registry.CloseAll(ctx), errWriteRefused)
	assert.Equal(t, 1, f.registry.Len())
}

func TestClosedSessionIsNotResumed(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	e, err := f.registry.Open(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, f.registry.Close(ctx, e.ID))

	_, err = f.registry.Resume(ctx, e.ID, alice)
	require.ErrorIs(t, err, ErrSessionNotFound)

	f.clock.advance(2 * time.Minute)
	f.registry.Sweep(ctx)
	_, err = f.registry.Resume(ctx, e.ID, alice)
	require.NoError(t, err, "tombstone is dropped once every token for it has expired")
}
