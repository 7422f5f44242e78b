package services

import (
	"context"
	"errors"
	"strings"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/gateways/commerce"
)

var errOrderGatewayRequired = errors.New("order service: commerce gateway is required")

// ErrOrderInvalidInput indicates the caller supplied invalid input.
var ErrOrderInvalidInput = errors.New("order service: invalid input")

// ErrOrderNotFound indicates the reference is unknown.
var ErrOrderNotFound = errors.New("order service: order not found")

// ErrOrderUnavailable indicates the commerce backend failed.
var ErrOrderUnavailable = errors.New("order service: unavailable")

// OrderServiceDeps wires the commerce gateway for tracking reads.
type OrderServiceDeps struct {
	Commerce CommerceGateway
	Logger   func(context.Context, string, map[string]any)
}

type orderService struct {
	commerce CommerceGateway
	logger   func(context.Context, string, map[string]any)
}

// NewOrderService constructs an OrderService enforcing dependency validation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Commerce == nil {
		return nil, errOrderGatewayRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{commerce: deps.Commerce, logger: logger}, nil
}

// Track looks the order up and derives its lifecycle and timeline from the
// raw payment and shipment codes. Codes outside the known contract are
// logged and the order is reported as pending rather than guessed at.
func (s *orderService) Track(ctx context.Context, reference string) (OrderStatus, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return OrderStatus{}, ErrOrderInvalidInput
	}

	order, err := s.commerce.LookupOrder(ctx, reference)
	if err != nil {
		if errors.Is(err, commerce.ErrOrderNotFound) {
			return OrderStatus{}, ErrOrderNotFound
		}
		if errors.Is(err, commerce.ErrCommerceBadRequest) {
			return OrderStatus{}, ErrOrderInvalidInput
		}
		return OrderStatus{}, ErrOrderUnavailable
	}

	if unknown := domain.UnrecognizedCodes(order.Signal); len(unknown) > 0 {
		s.logger(ctx, "order.unrecognized_status_codes", map[string]any{
			"reference": reference,
			"codes":     unknown,
			"payment":   order.Signal.PaymentStatus,
			"shipment":  order.Signal.ShipmentStatus,
		})
	}

	lifecycle := domain.DeriveLifecycle(order.Signal)
	return OrderStatus{
		Order:     order,
		Lifecycle: lifecycle,
		Timeline:  domain.ProjectTimeline(lifecycle),
		Display:   displayBreakdown(order.Breakdown),
	}, nil
}
