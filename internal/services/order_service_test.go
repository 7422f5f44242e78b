package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/gateways/commerce"
)

type fakeCommerceGateway struct {
	order     Order
	lookupErr error

	reference string
	createErr error
	created   []commerce.CreateTransactionRequest
}

func (f *fakeCommerceGateway) CreateTransaction(_ context.Context, req commerce.CreateTransactionRequest) (string, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.reference, nil
}

func (f *fakeCommerceGateway) LookupOrder(_ context.Context, _ string) (Order, error) {
	return f.order, f.lookupErr
}

func newOrderServiceForTest(t *testing.T, gateway *fakeCommerceGateway, logger func(context.Context, string, map[string]any)) OrderService {
	t.Helper()
	svc, err := NewOrderService(OrderServiceDeps{Commerce: gateway, Logger: logger})
	if err != nil {
		t.Fatalf("NewOrderService error: %v", err)
	}
	return svc
}

func TestOrderTrackDerivesLifecycleAndTimeline(t *testing.T) {
	gateway := &fakeCommerceGateway{order: Order{
		Reference: "INV-1",
		Signal:    domain.RawOrderSignal{PaymentStatus: 2, ShipmentStatus: 0},
		Breakdown: domain.PriceBreakdown{Subtotal: 298000, GrandTotal: 313000, ShippingCost: 15000},
	}}
	svc := newOrderServiceForTest(t, gateway, nil)

	status, err := svc.Track(context.Background(), "INV-1")
	if err != nil {
		t.Fatalf("Track error: %v", err)
	}
	if status.Lifecycle != domain.LifecycleProcessed {
		t.Fatalf("expected processed, got %s", status.Lifecycle)
	}
	if status.Timeline.StepIndex != 2 || status.Timeline.Progress != 50 {
		t.Fatalf("unexpected timeline: %+v", status.Timeline)
	}
	if status.Display.GrandTotal == "" {
		t.Fatalf("expected formatted amounts, got %+v", status.Display)
	}
}

func TestOrderTrackTerminalStateWinsOverShipment(t *testing.T) {
	gateway := &fakeCommerceGateway{order: Order{
		Reference: "INV-2",
		Signal:    domain.RawOrderSignal{PaymentStatus: 4, ShipmentStatus: 2},
	}}
	svc := newOrderServiceForTest(t, gateway, nil)

	status, err := svc.Track(context.Background(), "INV-2")
	if err != nil {
		t.Fatalf("Track error: %v", err)
	}
	if status.Lifecycle != domain.LifecycleCancelled {
		t.Fatalf("expected cancelled to win over delivered, got %s", status.Lifecycle)
	}
	if !status.Timeline.OffPath {
		t.Fatalf("expected off-path timeline for terminal state")
	}
}

func TestOrderTrackLogsUnrecognizedCodes(t *testing.T) {
	gateway := &fakeCommerceGateway{order: Order{
		Reference: "INV-3",
		Signal:    domain.RawOrderSignal{PaymentStatus: 9, ShipmentStatus: 0},
	}}

	var events []string
	svc := newOrderServiceForTest(t, gateway, func(_ context.Context, event string, _ map[string]any) {
		events = append(events, event)
	})

	status, err := svc.Track(context.Background(), "INV-3")
	if err != nil {
		t.Fatalf("Track error: %v", err)
	}
	if status.Lifecycle != domain.LifecyclePending {
		t.Fatalf("expected pending fallback for unknown code, got %s", status.Lifecycle)
	}
	if len(events) != 1 || events[0] != "order.unrecognized_status_codes" {
		t.Fatalf("expected drift log event, got %v", events)
	}
}

func TestOrderTrackErrors(t *testing.T) {
	svc := newOrderServiceForTest(t, &fakeCommerceGateway{lookupErr: commerce.ErrOrderNotFound}, nil)
	if _, err := svc.Track(context.Background(), "MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	svc = newOrderServiceForTest(t, &fakeCommerceGateway{lookupErr: commerce.ErrCommerceUnavailable}, nil)
	if _, err := svc.Track(context.Background(), "INV-1"); !errors.Is(err, ErrOrderUnavailable) {
		t.Fatalf("expected ErrOrderUnavailable, got %v", err)
	}

	if _, err := svc.Track(context.Background(), "  "); !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput, got %v", err)
	}
}
