package domain

import "fmt"

// Lifecycle is the single canonical order state derived from the two raw
// backend signals.
type Lifecycle string

const (
	LifecyclePending   Lifecycle = "pending"
	LifecyclePaid      Lifecycle = "paid"
	LifecycleProcessed Lifecycle = "processed"
	LifecycleShipped   Lifecycle = "shipped"
	LifecycleDelivered Lifecycle = "delivered"
	LifecycleReturned  Lifecycle = "returned"
	LifecycleCancelled Lifecycle = "cancelled"
)

// Raw payment-status codes as emitted by the commerce backend.
const (
	paymentStatusPending   = 0
	paymentStatusPaid      = 1
	paymentStatusProcessed = 2
	paymentStatusReturned  = 3
	paymentStatusCancelled = 4
)

// Raw shipment-status codes as emitted by the commerce backend.
const (
	shipmentStatusNone      = 0
	shipmentStatusShipped   = 1
	shipmentStatusDelivered = 2
)

// IsTerminal reports whether the lifecycle is an out-of-band terminal state
// rather than a position on the forward fulfillment timeline.
func (l Lifecycle) IsTerminal() bool {
	return l == LifecycleReturned || l == LifecycleCancelled
}

// DeriveLifecycle maps a raw signal pair onto the canonical lifecycle.
//
// Precedence, highest first:
//
//  1. terminal payment states (returned, cancelled) override everything,
//     including an in-flight shipment, because they represent a post-hoc
//     reversal;
//  2. shipment progress (delivered, shipped) overrides payment progress, so a
//     moving order never regresses to "processed" on a stale payment read;
//  3. payment progress (processed, paid);
//  4. pending.
//
// The function is total: unrecognized payment codes fall through to pending
// and shipment codes outside {0,1,2} are treated as not-yet-shipped. Callers
// that care about contract drift should also consult UnrecognizedCodes.
func DeriveLifecycle(signal RawOrderSignal) Lifecycle {
	switch signal.PaymentStatus {
	case paymentStatusReturned:
		return LifecycleReturned
	case paymentStatusCancelled:
		return LifecycleCancelled
	}

	switch signal.ShipmentStatus {
	case shipmentStatusDelivered:
		return LifecycleDelivered
	case shipmentStatusShipped:
		return LifecycleShipped
	}

	switch signal.PaymentStatus {
	case paymentStatusProcessed:
		return LifecycleProcessed
	case paymentStatusPaid:
		return LifecyclePaid
	}

	return LifecyclePending
}

// UnrecognizedCodes lists signal codes outside the documented upstream
// contract. Derivation absorbs them safely; this exists so the caller can log
// contract drift instead of silently hiding it.
func UnrecognizedCodes(signal RawOrderSignal) []string {
	var out []string
	if signal.PaymentStatus < paymentStatusPending || signal.PaymentStatus > paymentStatusCancelled {
		out = append(out, fmt.Sprintf("paymentStatus=%d", signal.PaymentStatus))
	}
	if signal.ShipmentStatus < shipmentStatusNone || signal.ShipmentStatus > shipmentStatusDelivered {
		out = append(out, fmt.Sprintf("shipmentStatus=%d", signal.ShipmentStatus))
	}
	return out
}
