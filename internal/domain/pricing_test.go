package domain

import "testing"

func TestResolveDiscountFixed(t *testing.T) {
	voucher := &Voucher{ID: "v1", Code: "HEMAT5RB", Kind: VoucherFixed, FixedAmount: 5000}

	if got := ResolveDiscount(voucher, 20000); got != 5000 {
		t.Fatalf("expected 5000, got %d", got)
	}
	// Fixed discount never exceeds the amount it discounts.
	if got := ResolveDiscount(voucher, 3000); got != 3000 {
		t.Fatalf("expected clamp to subtotal 3000, got %d", got)
	}
	if got := ResolveDiscount(voucher, 0); got != 0 {
		t.Fatalf("expected 0 on empty subtotal, got %d", got)
	}
}

func TestResolveDiscountPercentage(t *testing.T) {
	voucher := &Voucher{ID: "v2", Code: "DISKON10", Kind: VoucherPercentage, PercentageAmount: 10}

	if got := ResolveDiscount(voucher, 298000); got != 29800 {
		t.Fatalf("expected 29800, got %d", got)
	}

	// Property sweep: 0 <= discount <= subtotal for all p in [0,100].
	subtotal := int64(13337)
	prev := int64(0)
	for p := int64(0); p <= 100; p++ {
		v := &Voucher{Kind: VoucherPercentage, PercentageAmount: p}
		got := ResolveDiscount(v, subtotal)
		if got < 0 || got > subtotal {
			t.Fatalf("discount %d out of [0,%d] at p=%d", got, subtotal, p)
		}
		if got < prev {
			t.Fatalf("discount not monotonic: p=%d gave %d after %d", p, got, prev)
		}
		prev = got
	}
}

func TestResolveDiscountMalformedVoucher(t *testing.T) {
	// Negative upstream amounts clamp to zero, never to a negative discount.
	if got := ResolveDiscount(&Voucher{Kind: VoucherFixed, FixedAmount: -500}, 10000); got != 0 {
		t.Fatalf("expected 0 for negative fixed amount, got %d", got)
	}
	if got := ResolveDiscount(&Voucher{Kind: VoucherPercentage, PercentageAmount: -10}, 10000); got != 0 {
		t.Fatalf("expected 0 for negative percentage, got %d", got)
	}
	if got := ResolveDiscount(&Voucher{Kind: VoucherKind("bogus"), FixedAmount: 500}, 10000); got != 0 {
		t.Fatalf("expected 0 for unknown kind, got %d", got)
	}
	if got := ResolveDiscount(nil, 10000); got != 0 {
		t.Fatalf("expected 0 for nil voucher, got %d", got)
	}
}

func TestComputeBreakdownScenario(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: 149000, Quantity: 2}}
	quote := &ShippingQuote{CarrierCode: "jne", ServiceName: "REG", Cost: 15000}

	got := ComputeBreakdown(items, nil, quote)
	want := PriceBreakdown{Subtotal: 298000, Discount: 0, ShippingCost: 15000, GrandTotal: 313000}
	if got != want {
		t.Fatalf("breakdown mismatch: want %+v, got %+v", want, got)
	}
}

func TestComputeBreakdownPercentageVoucher(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: 149000, Quantity: 2}}
	voucher := &Voucher{Kind: VoucherPercentage, PercentageAmount: 10}
	quote := &ShippingQuote{Cost: 15000}

	got := ComputeBreakdown(items, voucher, quote)
	if got.Discount != 29800 {
		t.Fatalf("expected discount 29800, got %d", got.Discount)
	}
	if got.GrandTotal != 298000-29800+15000 {
		t.Fatalf("expected grand total %d, got %d", 298000-29800+15000, got.GrandTotal)
	}
}

func TestComputeBreakdownEmptyCart(t *testing.T) {
	voucher := &Voucher{Kind: VoucherFixed, FixedAmount: 10000}
	quote := &ShippingQuote{Cost: 9000}

	got := ComputeBreakdown(nil, voucher, quote)
	if got.Subtotal != 0 || got.Discount != 0 {
		t.Fatalf("expected zero subtotal and discount, got %+v", got)
	}
	if got.GrandTotal != 9000 {
		t.Fatalf("expected grand total to equal shipping, got %d", got.GrandTotal)
	}
}

func TestComputeBreakdownIdempotent(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", UnitPrice: 75000, Quantity: 3},
		{ProductID: "p2", UnitPrice: 12500, Quantity: 1},
	}
	voucher := &Voucher{Kind: VoucherFixed, FixedAmount: 20000}
	quote := &ShippingQuote{Cost: 18000}

	first := ComputeBreakdown(items, voucher, quote)
	second := ComputeBreakdown(items, voucher, quote)
	if first != second {
		t.Fatalf("breakdown not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeBreakdownVoucherMonotonicity(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: 99999, Quantity: 2}}
	quote := &ShippingQuote{Cost: 21000}

	prevDiscount := int64(-1)
	prevTotal := int64(1 << 62)
	for p := int64(0); p <= 100; p++ {
		voucher := &Voucher{Kind: VoucherPercentage, PercentageAmount: p}
		bd := ComputeBreakdown(items, voucher, quote)
		if bd.Discount < prevDiscount {
			t.Fatalf("discount decreased at p=%d: %d < %d", p, bd.Discount, prevDiscount)
		}
		if bd.GrandTotal > prevTotal {
			t.Fatalf("grand total increased at p=%d: %d > %d", p, bd.GrandTotal, prevTotal)
		}
		if bd.GrandTotal < bd.ShippingCost {
			t.Fatalf("grand total %d fell below shipping %d at p=%d", bd.GrandTotal, bd.ShippingCost, p)
		}
		prevDiscount = bd.Discount
		prevTotal = bd.GrandTotal
	}
}

func TestComputeBreakdownIgnoresInvalidLines(t *testing.T) {
	items := []LineItem{
		{ProductID: "ok", UnitPrice: 10000, Quantity: 1},
		{ProductID: "zero-qty", UnitPrice: 5000, Quantity: 0},
		{ProductID: "negative", UnitPrice: -100, Quantity: 2},
	}
	got := ComputeBreakdown(items, nil, nil)
	if got.Subtotal != 10000 {
		t.Fatalf("expected invalid lines to be ignored, got subtotal %d", got.Subtotal)
	}
}
