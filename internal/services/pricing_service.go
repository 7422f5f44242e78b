package services

import (
	"context"
	"errors"
	"strings"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories"
)

var errPricingRepositoryRequired = errors.New("pricing service: repository is required")

// ErrPricingInvalidInput indicates the caller supplied invalid input.
var ErrPricingInvalidInput = errors.New("pricing service: invalid input")

// ErrPricingUnavailable indicates the session store failed.
var ErrPricingUnavailable = errors.New("pricing service: unavailable")

// PricingServiceDeps wires the session store for breakdown reads.
type PricingServiceDeps struct {
	Repository repositories.SessionRepository
	Logger     func(context.Context, string, map[string]any)
}

type pricingService struct {
	repo   repositories.SessionRepository
	logger func(context.Context, string, map[string]any)
}

// NewPricingService constructs a PricingService enforcing dependency validation.
func NewPricingService(deps PricingServiceDeps) (PricingService, error) {
	if deps.Repository == nil {
		return nil, errPricingRepositoryRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &pricingService{repo: deps.Repository, logger: logger}, nil
}

// Quote recomputes the breakdown from the session's current items, voucher,
// and shipping selection. Nothing is memoised: a missing session prices as an
// empty cart rather than serving a stored total.
func (s *pricingService) Quote(ctx context.Context, key string) (PriceQuote, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return PriceQuote{}, ErrPricingInvalidInput
	}

	session, err := s.repo.Get(ctx, key)
	if err != nil {
		if isRepoNotFound(err) {
			session = CheckoutSession{Key: key}
		} else {
			return PriceQuote{}, translateRepoError(err, ErrPricingUnavailable, nil)
		}
	}

	breakdown := session.Breakdown()
	return PriceQuote{
		Breakdown: breakdown,
		Display:   displayBreakdown(breakdown),
	}, nil
}

func displayBreakdown(b PriceBreakdown) PriceDisplay {
	return PriceDisplay{
		Subtotal:     domain.FormatRupiah(b.Subtotal),
		Discount:     domain.FormatRupiah(b.Discount),
		ShippingCost: domain.FormatRupiah(b.ShippingCost),
		GrandTotal:   domain.FormatRupiah(b.GrandTotal),
	}
}
