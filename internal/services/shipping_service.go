package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories"
)

var (
	errShippingRepositoryRequired = errors.New("shipping service: repository is required")
	errShippingGatewayRequired    = errors.New("shipping service: rate gateway is required")
	errShippingClockRequired      = errors.New("shipping service: clock is required")
)

// ErrShippingInvalidInput indicates the caller supplied invalid input.
var ErrShippingInvalidInput = errors.New("shipping service: invalid input")

// ErrShippingUnavailable indicates the session store failed.
var ErrShippingUnavailable = errors.New("shipping service: unavailable")

// ErrDestinationRequired indicates a carrier was chosen before a destination.
var ErrDestinationRequired = errors.New("shipping service: destination is required first")

// ShippingServiceDeps wires the session store and rate gateway.
type ShippingServiceDeps struct {
	Repository repositories.SessionRepository
	Rates      RateGateway
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type shippingService struct {
	repo   repositories.SessionRepository
	rates  RateGateway
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewShippingService constructs a ShippingService enforcing dependency validation.
func NewShippingService(deps ShippingServiceDeps) (ShippingService, error) {
	if deps.Repository == nil {
		return nil, errShippingRepositoryRequired
	}
	if deps.Rates == nil {
		return nil, errShippingGatewayRequired
	}
	if deps.Clock == nil {
		return nil, errShippingClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &shippingService{
		repo:   deps.Repository,
		rates:  deps.Rates,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}, nil
}

// SetDestination replaces the session destination, clearing carrier, quotes,
// and any selected quote.
func (s *shippingService) SetDestination(ctx context.Context, cmd SetDestinationCommand) (CheckoutSession, error) {
	key := strings.TrimSpace(cmd.SessionKey)
	if key == "" {
		return CheckoutSession{}, ErrShippingInvalidInput
	}

	destination := domain.Destination{
		ProvinceID: strings.TrimSpace(cmd.ProvinceID),
		CityID:     strings.TrimSpace(cmd.CityID),
		DistrictID: strings.TrimSpace(cmd.DistrictID),
		RawAddress: strings.TrimSpace(cmd.RawAddress),
		PostalCode: strings.TrimSpace(cmd.PostalCode),
	}
	if !destination.HasTarget() {
		return CheckoutSession{}, fmt.Errorf("%w: district id or postal address is required", ErrShippingInvalidInput)
	}

	session, err := s.load(ctx, key)
	if err != nil {
		return CheckoutSession{}, err
	}

	session.Shipping.SetDestination(destination)
	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrShippingUnavailable, nil)
	}

	s.logger(ctx, "shipping.destination_set", map[string]any{
		"sessionKey":  key,
		"destination": destination.Key(),
	})
	return session, nil
}

// ChooseCarrier records the carrier, persists the in-flight fetch state, asks
// the rate gateway for quotes, and applies the result only if no newer input
// arrived while the fetch ran. The fetch outcome lives in the returned
// session's shipping state, not in the error.
func (s *shippingService) ChooseCarrier(ctx context.Context, key, carrierCode string) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	carrierCode = strings.ToLower(strings.TrimSpace(carrierCode))
	if key == "" || carrierCode == "" {
		return CheckoutSession{}, ErrShippingInvalidInput
	}

	session, err := s.load(ctx, key)
	if err != nil {
		return CheckoutSession{}, err
	}

	generation, err := session.Shipping.SetCarrier(carrierCode)
	if err != nil {
		if errors.Is(err, domain.ErrCarrierRequiresDestination) {
			return CheckoutSession{}, ErrDestinationRequired
		}
		return CheckoutSession{}, ErrShippingInvalidInput
	}
	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrShippingUnavailable, nil)
	}

	quotes, fetchErr := s.rates.FetchQuotes(ctx, session.Shipping.Destination, carrierCode)

	// Reload before applying: the session may have moved on while the
	// fetch was in flight, in which case this result is stale.
	session, err = s.load(ctx, key)
	if err != nil {
		return CheckoutSession{}, err
	}

	var applied bool
	if fetchErr != nil {
		applied = session.Shipping.ApplyFetchFailure(generation)
		s.logger(ctx, "shipping.rates_failed", map[string]any{
			"sessionKey": key,
			"carrier":    carrierCode,
			"error":      fetchErr.Error(),
			"applied":    applied,
		})
	} else {
		applied = session.Shipping.ApplyQuotes(generation, quotes)
		s.logger(ctx, "shipping.rates_fetched", map[string]any{
			"sessionKey": key,
			"carrier":    carrierCode,
			"quotes":     len(quotes),
			"applied":    applied,
		})
	}

	if !applied {
		return session, nil
	}

	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrShippingUnavailable, nil)
	}
	return session, nil
}

// SelectQuote reselects a member of the fetched quote set.
func (s *shippingService) SelectQuote(ctx context.Context, key string, index int) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return CheckoutSession{}, ErrShippingInvalidInput
	}

	session, err := s.load(ctx, key)
	if err != nil {
		return CheckoutSession{}, err
	}

	if err := session.Shipping.SelectQuote(index); err != nil {
		return CheckoutSession{}, fmt.Errorf("%w: %v", ErrShippingInvalidInput, err)
	}
	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrShippingUnavailable, nil)
	}
	return session, nil
}

func (s *shippingService) load(ctx context.Context, key string) (CheckoutSession, error) {
	session, err := s.repo.Get(ctx, key)
	if err != nil {
		if isRepoNotFound(err) {
			session = CheckoutSession{
				Key:       key,
				Shipping:  domain.NewShippingSelection(),
				CreatedAt: s.now(),
			}
			return normaliseSession(session, key), nil
		}
		return CheckoutSession{}, translateRepoError(err, ErrShippingUnavailable, nil)
	}
	return normaliseSession(session, key), nil
}
