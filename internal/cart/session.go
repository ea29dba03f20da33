package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

var (
	ErrItemNotFound    = errors.New("product not found in cart")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrNotLoggedIn     = errors.New("no user logged in")
	ErrSessionActive   = errors.New("session already has a logged in user")
)

// Quantity bounds accepted by Update. They are a UI limit and do not depend
// on stock.
const (
	MinUpdateQuantity = 1
	MaxUpdateQuantity = 10
)

// Carts is the persistence a session writes through to.
type Carts interface {
	Load(ctx context.Context, userID string) ([]models.CartItem, error)
	Save(ctx context.Context, userID string, items []models.CartItem) error
}

// Products resolves products for Add.
type Products interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
}

type State int

// Dirty lasts only while a mutation is being written through; once the write
// returns the session is Hydrated again whether it succeeded or not. State
// therefore never reports Dirty to callers.
const (
	Anonymous State = iota
	Hydrated
	Dirty
	Destroyed
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Hydrated:
		return "hydrated"
	case Dirty:
		return "dirty"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// Session holds the working copy of one logged-in user's cart. Every
// mutation is written through to Carts before it becomes visible; when the
// write fails the working copy is left exactly as it was.
type Session struct {
	carts    Carts
	products Products
	log      zerolog.Logger

	mu     sync.Mutex
	state  State
	userID string
	items  []models.CartItem
}

func NewSession(carts Carts, products Products, log zerolog.Logger) *Session {
	return &Session{
		carts:    carts,
		products: products,
		log:      log.With().Str("area", "cart").Logger(),
	}
}

// Login hydrates the working copy from the user's stored cart.
func (s *Session) Login(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Anonymous {
		return ErrSessionActive
	}
	items, err := s.carts.Load(ctx, userID)
	if err != nil {
		return err
	}

	s.userID = userID
	s.items = items
	s.state = Hydrated
	s.log.Debug().Str("userId", userID).Int("items", len(items)).Msg("cart hydrated")
	return nil
}

// Add puts qty of a product into the cart. An existing line is increased;
// either way the resulting quantity is capped at the product's stock.
func (s *Session) Add(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock < 1 {
		return ErrOutOfStock
	}

	next := s.snapshot()
	if i := indexOf(next, product.ID); i >= 0 {
		if qty > product.Stock-next[i].Quantity {
			next[i].Quantity = product.Stock
		} else {
			next[i].Quantity += qty
		}
	} else {
		next = append(next, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  min(qty, product.Stock),
		})
	}
	return s.commit(ctx, next)
}

// Update sets a line's quantity exactly. Stock is not consulted.
func (s *Session) Update(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}
	if qty < MinUpdateQuantity || qty > MaxUpdateQuantity {
		return ErrInvalidQuantity
	}

	next := s.snapshot()
	i := indexOf(next, productID)
	if i < 0 {
		return ErrItemNotFound
	}
	next[i].Quantity = qty
	return s.commit(ctx, next)
}

// Remove deletes a line. Removing the last line leaves an empty cart.
func (s *Session) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}

	next := s.snapshot()
	i := indexOf(next, productID)
	if i < 0 {
		return ErrItemNotFound
	}
	next = append(next[:i], next[i+1:]...)
	return s.commit(ctx, next)
}

// Logout flushes the working copy and ends the session. When the flush
// fails the session stays logged in so the caller can retry.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}
	if err := s.carts.Save(ctx, s.userID, s.snapshot()); err != nil {
		s.log.Error().Err(err).Str("userId", s.userID).Msg("flush on logout failed")
		return err
	}

	s.log.Debug().Str("userId", s.userID).Msg("cart flushed, session destroyed")
	s.state = Destroyed
	s.userID = ""
	s.items = nil
	return nil
}

// Items returns a copy of the working copy.
func (s *Session) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Total is the sum of price times quantity over all lines.
func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) requireActive() error {
	if s.state != Hydrated && s.state != Dirty {
		return ErrNotLoggedIn
	}
	return nil
}

func (s *Session) commit(ctx context.Context, next []models.CartItem) error {
	s.state = Dirty
	if err := s.carts.Save(ctx, s.userID, next); err != nil {
		s.state = Hydrated
		s.log.Error().Err(err).Str("userId", s.userID).Msg("cart write failed, working copy unchanged")
		return err
	}
	s.items = next
	s.state = Hydrated
	return nil
}

func (s *Session) snapshot() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func indexOf(items []models.CartItem, productID string) int {
	productID = strings.TrimSpace(productID)
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
