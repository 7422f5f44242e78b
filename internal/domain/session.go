package domain

import "time"

// CheckoutSession is the unit of cart state for one guest checkout. It is
// read and written atomically on every mutation by the session store.
type CheckoutSession struct {
	Key       string
	Items     []LineItem
	Voucher   *Voucher
	Buyer     BuyerContact
	Shipping  ShippingSelection
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal recomputes the item subtotal. Derived, never stored.
func (s *CheckoutSession) Subtotal() int64 {
	var subtotal int64
	for _, item := range s.Items {
		line, err := MultiplyPrice(item.UnitPrice, item.Quantity)
		if err != nil {
			continue
		}
		sum, err := AddAmounts(subtotal, line)
		if err != nil {
			continue
		}
		subtotal = sum
	}
	return subtotal
}

// Breakdown recomputes the full price breakdown from current session state.
func (s *CheckoutSession) Breakdown() PriceBreakdown {
	return ComputeBreakdown(s.Items, s.Voucher, s.Shipping.SelectedQuote())
}
