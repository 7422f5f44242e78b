package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tokosetara/api/internal/gateways/commerce"
	"github.com/tokosetara/api/internal/payments"
	"github.com/tokosetara/api/internal/repositories"
)

var (
	errCheckoutRepositoryRequired = errors.New("checkout service: repository is required")
	errCheckoutGatewayRequired    = errors.New("checkout service: commerce gateway is required")
	errCheckoutClockRequired      = errors.New("checkout service: clock is required")
)

// Payment kinds accepted by Submit.
const (
	PaymentKindManual  = "manual"
	PaymentKindGateway = "gateway"
)

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutIncomplete indicates the session is missing items, buyer
// details, or a selected shipping quote.
var ErrCheckoutIncomplete = errors.New("checkout service: session not ready for submission")

// ErrCheckoutUnavailable indicates a backend dependency failed.
var ErrCheckoutUnavailable = errors.New("checkout service: unavailable")

// ErrGatewayPaymentsDisabled indicates gateway payments are turned off.
var ErrGatewayPaymentsDisabled = errors.New("checkout service: gateway payments are disabled")

// PaymentSessionCreator creates PSP checkout sessions. Satisfied by
// payments.Manager.
type PaymentSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, preferred string, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
}

// CheckoutServiceDeps wires the stores and gateways for order submission.
type CheckoutServiceDeps struct {
	Repository            repositories.SessionRepository
	Commerce              CommerceGateway
	Payments              PaymentSessionCreator
	Clock                 func() time.Time
	Logger                func(context.Context, string, map[string]any)
	Currency              string
	SuccessURL            string
	CancelURL             string
	EnableGatewayPayments bool
}

type checkoutService struct {
	repo           repositories.SessionRepository
	commerce       CommerceGateway
	payments       PaymentSessionCreator
	now            func() time.Time
	logger         func(context.Context, string, map[string]any)
	currency       string
	successURL     string
	cancelURL      string
	gatewayEnabled bool
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Repository == nil {
		return nil, errCheckoutRepositoryRequired
	}
	if deps.Commerce == nil {
		return nil, errCheckoutGatewayRequired
	}
	if deps.Clock == nil {
		return nil, errCheckoutClockRequired
	}
	if deps.EnableGatewayPayments && deps.Payments == nil {
		return nil, errors.New("checkout service: payment gateway is required when gateway payments are enabled")
	}

	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "IDR"
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		repo:           deps.Repository,
		commerce:       deps.Commerce,
		payments:       deps.Payments,
		now:            func() time.Time { return deps.Clock().UTC() },
		logger:         logger,
		currency:       currency,
		successURL:     strings.TrimSpace(deps.SuccessURL),
		cancelURL:      strings.TrimSpace(deps.CancelURL),
		gatewayEnabled: deps.EnableGatewayPayments,
	}, nil
}

// Submit validates the session, recomputes its breakdown, records the
// transaction upstream, and for gateway payments opens a PSP session. The
// cart is cleared only once every step has succeeded; any failure leaves the
// session intact for another attempt.
func (s *checkoutService) Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error) {
	key := strings.TrimSpace(cmd.SessionKey)
	if key == "" {
		return SubmitOrderResult{}, ErrCheckoutInvalidInput
	}

	paymentKind := strings.ToLower(strings.TrimSpace(cmd.PaymentKind))
	switch paymentKind {
	case PaymentKindManual:
	case PaymentKindGateway:
		if !s.gatewayEnabled {
			return SubmitOrderResult{}, ErrGatewayPaymentsDisabled
		}
	default:
		return SubmitOrderResult{}, fmt.Errorf("%w: unknown payment kind %q", ErrCheckoutInvalidInput, cmd.PaymentKind)
	}

	session, err := s.repo.Get(ctx, key)
	if err != nil {
		return SubmitOrderResult{}, translateRepoError(err, ErrCheckoutUnavailable, ErrCheckoutIncomplete)
	}
	session = normaliseSession(session, key)

	if err := validateForSubmission(session); err != nil {
		return SubmitOrderResult{}, err
	}

	quote := session.Shipping.SelectedQuote()
	breakdown := session.Breakdown()

	voucherCode := ""
	if session.Voucher != nil {
		voucherCode = session.Voucher.Code
	}

	reference, err := s.commerce.CreateTransaction(ctx, commerce.CreateTransactionRequest{
		Buyer:       session.Buyer,
		Items:       session.Items,
		Address:     session.Shipping.Destination.RawAddress,
		CourierCode: quote.CarrierCode,
		ServiceName: quote.ServiceName,
		VoucherCode: voucherCode,
		Breakdown:   breakdown,
		PaymentKind: paymentKind,
	})
	if err != nil {
		s.logger(ctx, "checkout.transaction_failed", map[string]any{
			"sessionKey": key,
			"error":      err.Error(),
		})
		if errors.Is(err, commerce.ErrCommerceBadRequest) {
			return SubmitOrderResult{}, ErrCheckoutInvalidInput
		}
		return SubmitOrderResult{}, ErrCheckoutUnavailable
	}

	result := SubmitOrderResult{Reference: reference, Breakdown: breakdown}

	if paymentKind == PaymentKindGateway {
		pspSession, err := s.payments.CreateCheckoutSession(ctx, "", payments.CheckoutSessionRequest{
			Amount:         breakdown.GrandTotal,
			Currency:       s.currency,
			Reference:      reference,
			CustomerEmail:  session.Buyer.Email,
			SuccessURL:     s.successURL,
			CancelURL:      s.cancelURL,
			IdempotencyKey: "checkout-" + reference,
			Items:          paymentLineItems(session, breakdown, s.currency),
		})
		if err != nil {
			// Keep the cart: the buyer can retry payment from the
			// same session.
			s.logger(ctx, "checkout.psp_session_failed", map[string]any{
				"sessionKey": key,
				"reference":  reference,
				"error":      err.Error(),
			})
			return SubmitOrderResult{}, ErrCheckoutUnavailable
		}
		result.RedirectURL = pspSession.RedirectURL
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		// The order is placed; a lingering session only risks a
		// duplicate submission attempt, so log and move on.
		s.logger(ctx, "checkout.session_clear_failed", map[string]any{
			"sessionKey": key,
			"reference":  reference,
			"error":      err.Error(),
		})
	}

	s.logger(ctx, "checkout.submitted", map[string]any{
		"sessionKey":  key,
		"reference":   reference,
		"paymentKind": paymentKind,
		"grandTotal":  breakdown.GrandTotal,
	})
	return result, nil
}

func validateForSubmission(session CheckoutSession) error {
	if len(session.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrCheckoutIncomplete)
	}
	if strings.TrimSpace(session.Buyer.Name) == "" || strings.TrimSpace(session.Buyer.Phone) == "" {
		return fmt.Errorf("%w: buyer name and phone are required", ErrCheckoutIncomplete)
	}
	if !session.Shipping.Destination.HasTarget() {
		return fmt.Errorf("%w: destination is required", ErrCheckoutIncomplete)
	}
	if session.Shipping.SelectedQuote() == nil {
		return fmt.Errorf("%w: a shipping quote must be selected", ErrCheckoutIncomplete)
	}
	return nil
}

// paymentLineItems mirrors the cart on the PSP page when the amounts line up
// exactly. A discount cannot be expressed as a negative PSP line, so a
// discounted order is charged as a single consolidated line instead.
func paymentLineItems(session CheckoutSession, breakdown PriceBreakdown, currency string) []payments.CheckoutLineItem {
	if breakdown.Discount > 0 {
		return nil
	}

	items := make([]payments.CheckoutLineItem, 0, len(session.Items)+1)
	for _, line := range session.Items {
		if line.Quantity <= 0 || line.UnitPrice < 0 {
			continue
		}
		items = append(items, payments.CheckoutLineItem{
			Name:     line.Name,
			Quantity: int64(line.Quantity),
			Amount:   line.UnitPrice,
			Currency: currency,
		})
	}
	if breakdown.ShippingCost > 0 {
		items = append(items, payments.CheckoutLineItem{
			Name:     "Shipping",
			Quantity: 1,
			Amount:   breakdown.ShippingCost,
			Currency: currency,
		})
	}
	return items
}
