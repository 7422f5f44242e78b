package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

const (
	maxLineQuantity = 999
	maxCartLines    = 100
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the session store cannot fulfil the request.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartItemNotFound indicates the product is not in the cart.
var ErrCartItemNotFound = errors.New("cart service: item not found")

// CartServiceDeps wires the session store for cart operations.
type CartServiceDeps struct {
	Repository repositories.SessionRepository
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo   repositories.SessionRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu        sync.RWMutex
	observers []CartObserver
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}, nil
}

// Subscribe registers an observer invoked after each committed cart mutation.
func (s *cartService) Subscribe(observer CartObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *cartService) notify(ctx context.Context, session CheckoutSession) {
	s.mu.RLock()
	observers := make([]CartObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, observer := range observers {
		observer(ctx, session)
	}
}

// GetSession loads the session, creating an empty one when absent.
func (s *cartService) GetSession(ctx context.Context, key string) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return CheckoutSession{}, ErrCartInvalidInput
	}

	session, err := s.repo.Get(ctx, key)
	if err != nil {
		if isRepoNotFound(err) {
			return s.newSession(key), nil
		}
		return CheckoutSession{}, translateRepoError(err, ErrCartUnavailable, nil)
	}
	return normaliseSession(session, key), nil
}

// AddItem adds the product to the cart, merging quantities for an existing line.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CheckoutSession, error) {
	key := strings.TrimSpace(cmd.SessionKey)
	productID := strings.TrimSpace(cmd.ProductID)
	if key == "" || productID == "" {
		return CheckoutSession{}, ErrCartInvalidInput
	}
	if cmd.Quantity <= 0 {
		return CheckoutSession{}, fmt.Errorf("%w: quantity must be greater than zero", ErrCartInvalidInput)
	}
	if cmd.UnitPrice < 0 {
		return CheckoutSession{}, fmt.Errorf("%w: unit price must be non-negative", ErrCartInvalidInput)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return CheckoutSession{}, fmt.Errorf("%w: product name is required", ErrCartInvalidInput)
	}

	return s.mutate(ctx, key, func(session *CheckoutSession) error {
		idx := indexOfLine(session.Items, productID)
		if idx >= 0 {
			quantity := session.Items[idx].Quantity + cmd.Quantity
			if quantity > maxLineQuantity {
				return fmt.Errorf("%w: quantity exceeds %d", ErrCartInvalidInput, maxLineQuantity)
			}
			session.Items[idx].Quantity = quantity
			session.Items[idx].UnitPrice = cmd.UnitPrice
			session.Items[idx].Name = name
			return nil
		}
		if len(session.Items) >= maxCartLines {
			return fmt.Errorf("%w: cart holds at most %d lines", ErrCartInvalidInput, maxCartLines)
		}
		session.Items = append(session.Items, domain.LineItem{
			ProductID: productID,
			Name:      name,
			UnitPrice: cmd.UnitPrice,
			Quantity:  cmd.Quantity,
		})
		return nil
	})
}

// IncrementItem raises the line quantity by one.
func (s *cartService) IncrementItem(ctx context.Context, key, productID string) (CheckoutSession, error) {
	return s.adjustQuantity(ctx, key, productID, 1)
}

// DecrementItem lowers the line quantity by one. Reaching zero removes the line.
func (s *cartService) DecrementItem(ctx context.Context, key, productID string) (CheckoutSession, error) {
	return s.adjustQuantity(ctx, key, productID, -1)
}

func (s *cartService) adjustQuantity(ctx context.Context, key, productID string, delta int) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	productID = strings.TrimSpace(productID)
	if key == "" || productID == "" {
		return CheckoutSession{}, ErrCartInvalidInput
	}

	return s.mutate(ctx, key, func(session *CheckoutSession) error {
		idx := indexOfLine(session.Items, productID)
		if idx < 0 {
			return ErrCartItemNotFound
		}
		quantity := session.Items[idx].Quantity + delta
		if quantity > maxLineQuantity {
			return fmt.Errorf("%w: quantity exceeds %d", ErrCartInvalidInput, maxLineQuantity)
		}
		if quantity <= 0 {
			session.Items = append(session.Items[:idx], session.Items[idx+1:]...)
			return nil
		}
		session.Items[idx].Quantity = quantity
		return nil
	})
}

// RemoveItem drops the line from the cart regardless of quantity.
func (s *cartService) RemoveItem(ctx context.Context, key, productID string) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	productID = strings.TrimSpace(productID)
	if key == "" || productID == "" {
		return CheckoutSession{}, ErrCartInvalidInput
	}

	return s.mutate(ctx, key, func(session *CheckoutSession) error {
		idx := indexOfLine(session.Items, productID)
		if idx < 0 {
			return ErrCartItemNotFound
		}
		session.Items = append(session.Items[:idx], session.Items[idx+1:]...)
		return nil
	})
}

// SetBuyer records the buyer's contact details on the session.
func (s *cartService) SetBuyer(ctx context.Context, key string, buyer BuyerContact) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return CheckoutSession{}, ErrCartInvalidInput
	}
	buyer.Name = strings.TrimSpace(buyer.Name)
	buyer.Email = strings.TrimSpace(buyer.Email)
	buyer.Phone = strings.TrimSpace(buyer.Phone)
	if buyer.Name == "" {
		return CheckoutSession{}, fmt.Errorf("%w: buyer name is required", ErrCartInvalidInput)
	}

	return s.mutate(ctx, key, func(session *CheckoutSession) error {
		session.Buyer = buyer
		return nil
	})
}

// Clear drops the whole session. Clearing an absent session is a no-op.
func (s *cartService) Clear(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrCartInvalidInput
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return translateRepoError(err, ErrCartUnavailable, nil)
	}

	s.logger(ctx, "cart.cleared", map[string]any{"sessionKey": key})
	s.notify(ctx, s.newSession(key))
	return nil
}

// mutate loads the session, applies fn, saves, and notifies observers only
// after the save has been committed.
func (s *cartService) mutate(ctx context.Context, key string, fn func(*CheckoutSession) error) (CheckoutSession, error) {
	session, err := s.repo.Get(ctx, key)
	if err != nil {
		if !isRepoNotFound(err) {
			return CheckoutSession{}, translateRepoError(err, ErrCartUnavailable, nil)
		}
		session = s.newSession(key)
	}
	session = normaliseSession(session, key)

	if err := fn(&session); err != nil {
		return CheckoutSession{}, err
	}
	session.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrCartUnavailable, nil)
	}

	s.logger(ctx, "cart.updated", map[string]any{
		"sessionKey": key,
		"lines":      len(session.Items),
	})
	s.notify(ctx, session)
	return session, nil
}

func (s *cartService) newSession(key string) CheckoutSession {
	now := s.now()
	return CheckoutSession{
		Key:       key,
		Items:     []domain.LineItem{},
		Shipping:  domain.NewShippingSelection(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normaliseSession(session CheckoutSession, key string) CheckoutSession {
	session.Key = key
	if session.Items == nil {
		session.Items = []domain.LineItem{}
	}
	if session.Shipping.State == "" {
		session.Shipping = domain.NewShippingSelection()
	}
	return session
}

func indexOfLine(items []domain.LineItem, productID string) int {
	for i, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.ProductID), productID) {
			return i
		}
	}
	return -1
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// translateRepoError maps persistence failures to service sentinels. notFound
// may be nil when missing sessions are handled by the caller.
func translateRepoError(err error, unavailable, notFound error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() && notFound != nil {
			return notFound
		}
	}
	return unavailable
}
