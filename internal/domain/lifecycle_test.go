package domain

import "testing"

func TestDeriveLifecyclePrecedence(t *testing.T) {
	cases := []struct {
		name    string
		payment int
		ship    int
		want    Lifecycle
	}{
		{"fresh order", 0, 0, LifecyclePending},
		{"paid", 1, 0, LifecyclePaid},
		{"processed", 2, 0, LifecycleProcessed},
		{"shipped", 2, 1, LifecycleShipped},
		{"delivered", 2, 2, LifecycleDelivered},
		{"returned", 3, 0, LifecycleReturned},
		{"cancelled", 4, 0, LifecycleCancelled},

		// Cancellation overrides a delivered shipment: a post-hoc reversal
		// beats fulfillment progress.
		{"cancelled after delivery", 4, 2, LifecycleCancelled},
		{"returned after delivery", 3, 2, LifecycleReturned},

		// Shipment progress is authoritative over lagging payment status:
		// a moving order never displays as merely paid.
		{"shipped with stale payment", 1, 1, LifecycleShipped},
		{"delivered with stale payment", 1, 2, LifecycleDelivered},
		{"shipped before payment webhook", 0, 1, LifecycleShipped},
	}

	for _, tc := range cases {
		got := DeriveLifecycle(RawOrderSignal{PaymentStatus: tc.payment, ShipmentStatus: tc.ship})
		if got != tc.want {
			t.Fatalf("%s: DeriveLifecycle(%d, %d) = %s, want %s", tc.name, tc.payment, tc.ship, got, tc.want)
		}
	}
}

func TestDeriveLifecycleTotalOverUnknownCodes(t *testing.T) {
	// Unknown payment codes fall through to pending; shipment codes outside
	// {0,1,2} count as not-yet-shipped.
	if got := DeriveLifecycle(RawOrderSignal{PaymentStatus: 99, ShipmentStatus: 0}); got != LifecyclePending {
		t.Fatalf("expected pending for unknown payment code, got %s", got)
	}
	if got := DeriveLifecycle(RawOrderSignal{PaymentStatus: 1, ShipmentStatus: 7}); got != LifecyclePaid {
		t.Fatalf("expected paid when shipment code unknown, got %s", got)
	}
	if got := DeriveLifecycle(RawOrderSignal{PaymentStatus: -3, ShipmentStatus: -1}); got != LifecyclePending {
		t.Fatalf("expected pending for negative codes, got %s", got)
	}
}

func TestUnrecognizedCodes(t *testing.T) {
	if got := UnrecognizedCodes(RawOrderSignal{PaymentStatus: 2, ShipmentStatus: 1}); len(got) != 0 {
		t.Fatalf("expected no flags for known codes, got %v", got)
	}
	got := UnrecognizedCodes(RawOrderSignal{PaymentStatus: 9, ShipmentStatus: 5})
	if len(got) != 2 {
		t.Fatalf("expected both codes flagged, got %v", got)
	}
}

func TestLifecycleIsTerminal(t *testing.T) {
	for _, l := range []Lifecycle{LifecycleReturned, LifecycleCancelled} {
		if !l.IsTerminal() {
			t.Fatalf("expected %s to be terminal", l)
		}
	}
	for _, l := range []Lifecycle{LifecyclePending, LifecyclePaid, LifecycleProcessed, LifecycleShipped, LifecycleDelivered} {
		if l.IsTerminal() {
			t.Fatalf("expected %s to be on the forward path", l)
		}
	}
}
