package domain

// LineItem is a single cart line. Prices are non-negative integers in the
// smallest currency unit (rupiah has no minor unit, so 1 == Rp1).
type LineItem struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
}

// VoucherKind distinguishes the two supported discount rules.
type VoucherKind string

const (
	// VoucherFixed subtracts a fixed amount from the cart subtotal.
	VoucherFixed VoucherKind = "fixed"
	// VoucherPercentage subtracts a percentage of the cart subtotal.
	VoucherPercentage VoucherKind = "percentage"
)

// Voucher is a discount rule supplied by the external voucher catalog.
// At most one voucher is active per checkout session.
type Voucher struct {
	ID               string
	Code             string
	Kind             VoucherKind
	FixedAmount      int64
	PercentageAmount int64
}

// Destination identifies where an order ships to. DistrictID is preferred;
// RawAddress plus PostalCode is the fallback when region lookup is unavailable.
type Destination struct {
	ProvinceID string
	CityID     string
	DistrictID string
	RawAddress string
	PostalCode string
}

// Key returns the comparable identity of a destination. Any change to the key
// invalidates previously fetched shipping quotes.
func (d Destination) Key() string {
	if d.DistrictID != "" {
		return "district:" + d.DistrictID
	}
	if d.PostalCode != "" {
		return "postal:" + d.PostalCode + "|" + d.RawAddress
	}
	return ""
}

// HasTarget reports whether the destination is specific enough to quote against.
func (d Destination) HasTarget() bool {
	return d.Key() != ""
}

// ShippingQuote is one priced shipping option returned by a carrier-rate lookup.
type ShippingQuote struct {
	CarrierCode       string
	ServiceName       string
	Description       string
	Cost              int64
	EstimatedDuration string
}

// BuyerContact carries the contact fields required before submission.
type BuyerContact struct {
	Name  string
	Email string
	Phone string
}

// RawOrderSignal is the pair of independently evolving backend status codes.
// The two fields may be transiently inconsistent with each other.
type RawOrderSignal struct {
	PaymentStatus  int
	ShipmentStatus int
}

// Order is the read-only record returned by the order-lookup API. The core
// derives lifecycle and timeline from Signal and never mutates the record.
type Order struct {
	Reference     string
	Buyer         BuyerContact
	Items         []LineItem
	Address       string
	Courier       string
	ReceiptNumber string
	Signal        RawOrderSignal
	Breakdown     PriceBreakdown
}
