package services

import (
	"context"
	"testing"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories/memory"
)

func newPricingServiceForTest(t *testing.T) (PricingService, *memory.SessionRepository) {
	t.Helper()
	repo := memory.NewSessionRepository()
	svc, err := NewPricingService(PricingServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("NewPricingService error: %v", err)
	}
	return svc, repo
}

func TestPricingQuoteRecomputesFromSessionState(t *testing.T) {
	svc, repo := newPricingServiceForTest(t)
	ctx := context.Background()

	shipping := domain.NewShippingSelection()
	shipping.SetDestination(domain.Destination{DistrictID: "3171060"})
	gen, err := shipping.SetCarrier("jne")
	if err != nil {
		t.Fatalf("SetCarrier error: %v", err)
	}
	shipping.ApplyQuotes(gen, []domain.ShippingQuote{{CarrierCode: "jne", ServiceName: "REG", Cost: 15000}})

	session := domain.CheckoutSession{
		Key: "s1",
		Items: []domain.LineItem{
			{ProductID: "p1", Name: "Tote", UnitPrice: 149000, Quantity: 2},
		},
		Voucher:  &domain.Voucher{ID: "v1", Code: "HEMAT10", Kind: domain.VoucherPercentage, PercentageAmount: 10},
		Shipping: shipping,
	}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	quote, err := svc.Quote(ctx, "s1")
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	want := domain.PriceBreakdown{Subtotal: 298000, Discount: 29800, ShippingCost: 15000, GrandTotal: 283200}
	if quote.Breakdown != want {
		t.Fatalf("breakdown mismatch:\n got %+v\nwant %+v", quote.Breakdown, want)
	}
	if quote.Display.GrandTotal == "" || quote.Display.Subtotal == "" {
		t.Fatalf("expected formatted display amounts, got %+v", quote.Display)
	}

	// Mutating the stored session changes the next quote: nothing is memoised.
	session.Voucher = nil
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("update session: %v", err)
	}
	quote, err = svc.Quote(ctx, "s1")
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if quote.Breakdown.Discount != 0 || quote.Breakdown.GrandTotal != 313000 {
		t.Fatalf("expected recomputed breakdown, got %+v", quote.Breakdown)
	}
}

func TestPricingQuoteMissingSessionPricesAsEmptyCart(t *testing.T) {
	svc, _ := newPricingServiceForTest(t)

	quote, err := svc.Quote(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if quote.Breakdown != (domain.PriceBreakdown{}) {
		t.Fatalf("expected zero breakdown, got %+v", quote.Breakdown)
	}
}
