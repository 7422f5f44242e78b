package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tokosetara/api/internal/platform/httpx"
	"github.com/tokosetara/api/internal/services"
)

// CheckoutHandlers exposes the price quote and order submission endpoints.
type CheckoutHandlers struct {
	pricing  services.PricingService
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers over the pricing and checkout services.
func NewCheckoutHandlers(pricing services.PricingService, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{pricing: pricing, checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/quote", h.quote)
	r.Post("/", h.submit)
}

func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	quote, err := h.pricing.Quote(ctx, key)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, quoteResponse{Breakdown: buildBreakdownPayload(quote.Breakdown)})
}

type submitRequest struct {
	PaymentKind string `json:"payment_kind"`
}

type submitResponse struct {
	Reference   string           `json:"reference"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Breakdown   breakdownPayload `json:"breakdown"`
}

type quoteResponse struct {
	Breakdown breakdownPayload `json:"breakdown"`
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req submitRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.checkout.Submit(ctx, services.SubmitOrderCommand{
		SessionKey:  key,
		PaymentKind: req.PaymentKind,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, submitResponse{
		Reference:   result.Reference,
		RedirectURL: result.RedirectURL,
		Breakdown:   buildBreakdownPayload(result.Breakdown),
	})
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput), errors.Is(err, services.ErrPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutIncomplete):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_incomplete", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrGatewayPaymentsDisabled):
		httpx.WriteError(ctx, w, httpx.NewError("gateway_payments_disabled", "gateway payments are disabled", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutUnavailable), errors.Is(err, services.ErrPricingUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "checkout operation failed", http.StatusInternalServerError))
	}
}
