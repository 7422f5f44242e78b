package domain

// PriceBreakdown is the authoritative price computation backing a checkout
// submission. It is derived, never stored, and recomputed from its inputs on
// every read.
type PriceBreakdown struct {
	Subtotal     int64
	Discount     int64
	ShippingCost int64
	GrandTotal   int64
}

// ResolveDiscount computes the discount a voucher grants against a subtotal.
// The result is always within [0, subtotal]; malformed voucher amounts
// (negative fixed amount or percentage) resolve to zero rather than
// propagating upstream garbage into a payment amount.
func ResolveDiscount(voucher *Voucher, subtotal int64) int64 {
	if voucher == nil || subtotal <= 0 {
		return 0
	}
	switch voucher.Kind {
	case VoucherFixed:
		return ClampAmount(voucher.FixedAmount, subtotal)
	case VoucherPercentage:
		return ClampAmount(PercentOf(subtotal, voucher.PercentageAmount), subtotal)
	default:
		return 0
	}
}

// ComputeBreakdown combines line items, an optional voucher, and an optional
// selected shipping quote into one immutable breakdown.
//
//	subtotal   = Σ(unitPrice × quantity)
//	discount   = ResolveDiscount(voucher, subtotal)
//	shipping   = quote.Cost (0 when no quote is selected)
//	grandTotal = subtotal − discount + shipping
//
// Lines with non-positive quantity or negative price contribute nothing, so
// the function is total over arbitrary input. By construction
// grandTotal ≥ shipping.
func ComputeBreakdown(items []LineItem, voucher *Voucher, quote *ShippingQuote) PriceBreakdown {
	var subtotal int64
	for _, item := range items {
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

	discount := ResolveDiscount(voucher, subtotal)

	var shipping int64
	if quote != nil && quote.Cost > 0 {
		shipping = quote.Cost
	}

	net, err := SubtractAmounts(subtotal, discount)
	if err != nil {
		net = 0
	}
	total, err := AddAmounts(net, shipping)
	if err != nil {
		total = net
	}

	return PriceBreakdown{
		Subtotal:     subtotal,
		Discount:     discount,
		ShippingCost: shipping,
		GrandTotal:   total,
	}
}
