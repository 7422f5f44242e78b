package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/platform/httpx"
	"github.com/tokosetara/api/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the guest cart endpoints keyed by session.
type CartHandlers struct {
	carts    services.CartService
	vouchers services.VoucherService
}

// NewCartHandlers constructs handlers over the cart and voucher services.
func NewCartHandlers(carts services.CartService, vouchers services.VoucherService) *CartHandlers {
	return &CartHandlers{carts: carts, vouchers: vouchers}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Post("/items/{productID}/increment", h.incrementItem)
	r.Post("/items/{productID}/decrement", h.decrementItem)
	r.Delete("/items/{productID}", h.removeItem)
	r.Put("/buyer", h.setBuyer)
	r.Put("/voucher", h.applyVoucher)
	r.Delete("/voucher", h.removeVoucher)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)
	if key == "" {
		httpx.WriteError(ctx, w, httpx.NewError("session_key_required", "session key is required", http.StatusBadRequest))
		return
	}

	session, err := h.carts.GetSession(ctx, key)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)
	if key == "" {
		httpx.WriteError(ctx, w, httpx.NewError("session_key_required", "session key is required", http.StatusBadRequest))
		return
	}

	if err := h.carts.Clear(ctx, key); err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusNoContent, nil)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req addItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.carts.AddItem(ctx, services.AddItemCommand{
		SessionKey: key,
		ProductID:  req.ProductID,
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func (h *CartHandlers) incrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.carts.IncrementItem)
}

func (h *CartHandlers) decrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.carts.DecrementItem)
}

func (h *CartHandlers) adjustItem(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (services.CheckoutSession, error)) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)
	productID := chi.URLParam(r, "productID")

	session, err := fn(ctx, key, productID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)
	productID := chi.URLParam(r, "productID")

	session, err := h.carts.RemoveItem(ctx, key, productID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

type buyerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *CartHandlers) setBuyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req buyerRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.carts.SetBuyer(ctx, key, domain.BuyerContact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

type voucherRequest struct {
	Code string `json:"code"`
}

func (h *CartHandlers) applyVoucher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req voucherRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.vouchers.Apply(ctx, key, req.Code)
	if err != nil {
		writeVoucherError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func (h *CartHandlers) removeVoucher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	session, err := h.vouchers.Remove(ctx, key)
	if err != nil {
		writeVoucherError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "item not in cart", http.StatusNotFound))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart operation failed", http.StatusInternalServerError))
	}
}

func writeVoucherError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrVoucherInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrVoucherNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("voucher_not_found", "voucher code not recognised", http.StatusNotFound))
	case errors.Is(err, services.ErrVoucherUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("voucher_service_unavailable", "voucher service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("voucher_error", "voucher operation failed", http.StatusInternalServerError))
	}
}

type sessionResponse struct {
	Session sessionPayload `json:"session"`
}

type sessionPayload struct {
	Key        string            `json:"key"`
	ItemsCount int               `json:"items_count"`
	Items      []lineItemPayload `json:"items"`
	Voucher    *voucherPayload   `json:"voucher,omitempty"`
	Buyer      *buyerPayload     `json:"buyer,omitempty"`
	Shipping   shippingPayload   `json:"shipping"`
	Breakdown  breakdownPayload  `json:"breakdown"`
}

type lineItemPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type voucherPayload struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
}

type buyerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type shippingPayload struct {
	State         string              `json:"state"`
	Destination   *destinationPayload `json:"destination,omitempty"`
	CarrierCode   string              `json:"carrier_code,omitempty"`
	Quotes        []quotePayload      `json:"quotes"`
	SelectedIndex *int                `json:"selected_index,omitempty"`
	SelectedQuote *quotePayload       `json:"selected_quote,omitempty"`
}

type destinationPayload struct {
	ProvinceID string `json:"province_id,omitempty"`
	CityID     string `json:"city_id,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
	RawAddress string `json:"raw_address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type quotePayload struct {
	CarrierCode       string `json:"carrier_code"`
	ServiceName       string `json:"service_name"`
	Description       string `json:"description,omitempty"`
	Cost              int64  `json:"cost"`
	CostDisplay       string `json:"cost_display"`
	EstimatedDuration string `json:"estimated_duration,omitempty"`
}

type breakdownPayload struct {
	Subtotal            int64  `json:"subtotal"`
	Discount            int64  `json:"discount"`
	ShippingCost        int64  `json:"shipping_cost"`
	GrandTotal          int64  `json:"grand_total"`
	SubtotalDisplay     string `json:"subtotal_display"`
	DiscountDisplay     string `json:"discount_display"`
	ShippingCostDisplay string `json:"shipping_cost_display"`
	GrandTotalDisplay   string `json:"grand_total_display"`
}

// buildSessionPayload renders the session with a breakdown recomputed from
// its current state.
func buildSessionPayload(session services.CheckoutSession) sessionPayload {
	payload := sessionPayload{
		Key:        session.Key,
		ItemsCount: len(session.Items),
		Items:      make([]lineItemPayload, 0, len(session.Items)),
		Shipping:   buildShippingPayload(session.Shipping),
		Breakdown:  buildBreakdownPayload(session.Breakdown()),
	}
	for _, item := range session.Items {
		payload.Items = append(payload.Items, lineItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	if session.Voucher != nil {
		payload.Voucher = &voucherPayload{
			Code: session.Voucher.Code,
			Kind: string(session.Voucher.Kind),
		}
	}
	if strings.TrimSpace(session.Buyer.Name) != "" {
		payload.Buyer = &buyerPayload{
			Name:  session.Buyer.Name,
			Email: session.Buyer.Email,
			Phone: session.Buyer.Phone,
		}
	}
	return payload
}

func buildShippingPayload(selection domain.ShippingSelection) shippingPayload {
	payload := shippingPayload{
		State:       string(selection.State),
		CarrierCode: selection.CarrierCode,
		Quotes:      make([]quotePayload, 0, len(selection.Quotes)),
	}
	if selection.Destination.HasTarget() {
		payload.Destination = &destinationPayload{
			ProvinceID: selection.Destination.ProvinceID,
			CityID:     selection.Destination.CityID,
			DistrictID: selection.Destination.DistrictID,
			RawAddress: selection.Destination.RawAddress,
			PostalCode: selection.Destination.PostalCode,
		}
	}
	for _, quote := range selection.Quotes {
		payload.Quotes = append(payload.Quotes, buildQuotePayload(quote))
	}
	if selected := selection.SelectedQuote(); selected != nil {
		idx := selection.SelectedIndex
		payload.SelectedIndex = &idx
		quote := buildQuotePayload(*selected)
		payload.SelectedQuote = &quote
	}
	return payload
}

func buildQuotePayload(quote domain.ShippingQuote) quotePayload {
	return quotePayload{
		CarrierCode:       quote.CarrierCode,
		ServiceName:       quote.ServiceName,
		Description:       quote.Description,
		Cost:              quote.Cost,
		CostDisplay:       domain.FormatRupiah(quote.Cost),
		EstimatedDuration: quote.EstimatedDuration,
	}
}

func buildBreakdownPayload(b domain.PriceBreakdown) breakdownPayload {
	return breakdownPayload{
		Subtotal:            b.Subtotal,
		Discount:            b.Discount,
		ShippingCost:        b.ShippingCost,
		GrandTotal:          b.GrandTotal,
		SubtotalDisplay:     domain.FormatRupiah(b.Subtotal),
		DiscountDisplay:     domain.FormatRupiah(b.Discount),
		ShippingCostDisplay: domain.FormatRupiah(b.ShippingCost),
		GrandTotalDisplay:   domain.FormatRupiah(b.GrandTotal),
	}
}
