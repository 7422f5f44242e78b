package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/services"
)

type fakeOrderService struct {
	status services.OrderStatus
	err    error
}

func (f *fakeOrderService) Track(_ context.Context, _ string) (services.OrderStatus, error) {
	if f.err != nil {
		return services.OrderStatus{}, f.err
	}
	return f.status, nil
}

func TestOrderTrackEndpoint(t *testing.T) {
	lifecycle := domain.LifecycleProcessed
	fake := &fakeOrderService{
		status: services.OrderStatus{
			Order: domain.Order{
				Reference: "INV-1001",
				Buyer:     domain.BuyerContact{Name: "Sari", Phone: "0812"},
				Items: []domain.LineItem{
					{ProductID: "p1", Name: "Tote", UnitPrice: 149000, Quantity: 2},
				},
				Courier:   "jne",
				Breakdown: domain.PriceBreakdown{Subtotal: 298000, ShippingCost: 15000, GrandTotal: 313000},
			},
			Lifecycle: lifecycle,
			Timeline:  domain.ProjectTimeline(lifecycle),
		},
	}

	router := NewRouter(WithOrderRoutes(NewOrderHandlers(fake).Routes))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/INV-1001", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Order struct {
			Reference string `json:"reference"`
			Lifecycle string `json:"lifecycle"`
			Terminal  bool   `json:"terminal"`
			Timeline  struct {
				StepIndex int  `json:"step_index"`
				Progress  int  `json:"progress"`
				OffPath   bool `json:"off_path"`
				Steps     []struct {
					Milestone string `json:"milestone"`
					State     string `json:"state"`
				} `json:"steps"`
			} `json:"timeline"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Order.Reference != "INV-1001" || resp.Order.Lifecycle != "processed" {
		t.Fatalf("unexpected order payload: %+v", resp.Order)
	}
	if resp.Order.Terminal {
		t.Fatalf("processed must not be terminal")
	}
	if resp.Order.Timeline.StepIndex != 2 || resp.Order.Timeline.Progress != 50 {
		t.Fatalf("unexpected timeline: %+v", resp.Order.Timeline)
	}
	if len(resp.Order.Timeline.Steps) != 5 || resp.Order.Timeline.Steps[2].State != "current" {
		t.Fatalf("unexpected steps: %+v", resp.Order.Timeline.Steps)
	}
}

func TestOrderTrackCancelledIsOffPath(t *testing.T) {
	lifecycle := domain.LifecycleCancelled
	fake := &fakeOrderService{
		status: services.OrderStatus{
			Order:     domain.Order{Reference: "INV-1002"},
			Lifecycle: lifecycle,
			Timeline:  domain.ProjectTimeline(lifecycle),
		},
	}

	router := NewRouter(WithOrderRoutes(NewOrderHandlers(fake).Routes))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/INV-1002", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Order struct {
			Terminal bool `json:"terminal"`
			Timeline struct {
				StepIndex int  `json:"step_index"`
				Progress  int  `json:"progress"`
				OffPath   bool `json:"off_path"`
			} `json:"timeline"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Order.Terminal || !resp.Order.Timeline.OffPath {
		t.Fatalf("expected terminal off-path order, got %+v", resp.Order)
	}
	if resp.Order.Timeline.StepIndex != -1 || resp.Order.Timeline.Progress != 0 {
		t.Fatalf("unexpected timeline: %+v", resp.Order.Timeline)
	}
}

func TestOrderTrackNotFound(t *testing.T) {
	fake := &fakeOrderService{err: services.ErrOrderNotFound}
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(fake).Routes))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/INV-404", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "order_not_found" {
		t.Fatalf("unexpected error code %q", resp.Error)
	}
}
