package services

import (
	"context"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/gateways/commerce"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	LineItem          = domain.LineItem
	Voucher           = domain.Voucher
	Destination       = domain.Destination
	ShippingQuote     = domain.ShippingQuote
	ShippingSelection = domain.ShippingSelection
	BuyerContact      = domain.BuyerContact
	CheckoutSession   = domain.CheckoutSession
	PriceBreakdown    = domain.PriceBreakdown
	Order             = domain.Order
	Timeline          = domain.Timeline
	Lifecycle         = domain.Lifecycle
)

// RateGateway fetches carrier quotes from the external rate API.
type RateGateway interface {
	FetchQuotes(ctx context.Context, destination Destination, carrierCode string) ([]ShippingQuote, error)
}

// CommerceGateway records transactions and serves order lookups upstream.
type CommerceGateway interface {
	CreateTransaction(ctx context.Context, req commerce.CreateTransactionRequest) (string, error)
	LookupOrder(ctx context.Context, reference string) (Order, error)
}

// VoucherCatalog resolves voucher codes against the active campaign set.
type VoucherCatalog interface {
	FindByCode(ctx context.Context, code string) (Voucher, error)
}

// CartObserver is notified after a cart mutation has been committed to the
// session store. Observers must not mutate the session they receive.
type CartObserver func(ctx context.Context, session CheckoutSession)

// CartService manages line items and buyer details for one checkout session.
type CartService interface {
	GetSession(ctx context.Context, key string) (CheckoutSession, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (CheckoutSession, error)
	IncrementItem(ctx context.Context, key, productID string) (CheckoutSession, error)
	DecrementItem(ctx context.Context, key, productID string) (CheckoutSession, error)
	RemoveItem(ctx context.Context, key, productID string) (CheckoutSession, error)
	SetBuyer(ctx context.Context, key string, buyer BuyerContact) (CheckoutSession, error)
	Clear(ctx context.Context, key string) error
	Subscribe(observer CartObserver)
}

// VoucherService applies and removes discount vouchers on a session.
type VoucherService interface {
	Apply(ctx context.Context, key, code string) (CheckoutSession, error)
	Remove(ctx context.Context, key string) (CheckoutSession, error)
}

// ShippingService drives the destination and quote selection flow.
type ShippingService interface {
	SetDestination(ctx context.Context, cmd SetDestinationCommand) (CheckoutSession, error)
	ChooseCarrier(ctx context.Context, key, carrierCode string) (CheckoutSession, error)
	SelectQuote(ctx context.Context, key string, index int) (CheckoutSession, error)
}

// PricingService recomputes the price breakdown for a session on demand.
type PricingService interface {
	Quote(ctx context.Context, key string) (PriceQuote, error)
}

// CheckoutService validates and submits the finalised order.
type CheckoutService interface {
	Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error)
}

// OrderService serves order tracking reads.
type OrderService interface {
	Track(ctx context.Context, reference string) (OrderStatus, error)
}

// AddItemCommand adds a product line to the session cart.
type AddItemCommand struct {
	SessionKey string
	ProductID  string
	Name       string
	UnitPrice  int64
	Quantity   int
}

// SetDestinationCommand replaces the session's shipping destination.
type SetDestinationCommand struct {
	SessionKey string
	ProvinceID string
	CityID     string
	DistrictID string
	RawAddress string
	PostalCode string
}

// PriceQuote is the recomputed breakdown plus display-ready amounts.
type PriceQuote struct {
	Breakdown PriceBreakdown
	Display   PriceDisplay
}

// PriceDisplay carries locale-formatted rupiah strings for each component.
type PriceDisplay struct {
	Subtotal     string
	Discount     string
	ShippingCost string
	GrandTotal   string
}

// SubmitOrderCommand finalises the session into an order.
type SubmitOrderCommand struct {
	SessionKey  string
	PaymentKind string
}

// SubmitOrderResult reports the created order and, for gateway payments, the
// URL the buyer is redirected to.
type SubmitOrderResult struct {
	Reference   string
	RedirectURL string
	Breakdown   PriceBreakdown
}

// OrderStatus is the tracking projection served to buyers.
type OrderStatus struct {
	Order     Order
	Lifecycle Lifecycle
	Timeline  Timeline
	Display   PriceDisplay
}
