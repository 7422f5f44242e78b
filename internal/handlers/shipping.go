package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tokosetara/api/internal/platform/httpx"
	"github.com/tokosetara/api/internal/services"
)

// ShippingHandlers drives the destination and quote selection flow.
type ShippingHandlers struct {
	shipping services.ShippingService
}

// NewShippingHandlers constructs handlers over the shipping service.
func NewShippingHandlers(shipping services.ShippingService) *ShippingHandlers {
	return &ShippingHandlers{shipping: shipping}
}

// Routes wires the /shipping endpoints onto the provided router.
func (h *ShippingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Put("/destination", h.setDestination)
	r.Put("/carrier", h.chooseCarrier)
	r.Put("/quote", h.selectQuote)
}

type destinationRequest struct {
	ProvinceID string `json:"province_id"`
	CityID     string `json:"city_id"`
	DistrictID string `json:"district_id"`
	RawAddress string `json:"raw_address"`
	PostalCode string `json:"postal_code"`
}

func (h *ShippingHandlers) setDestination(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req destinationRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.shipping.SetDestination(ctx, services.SetDestinationCommand{
		SessionKey: key,
		ProvinceID: req.ProvinceID,
		CityID:     req.CityID,
		DistrictID: req.DistrictID,
		RawAddress: req.RawAddress,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		writeShippingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

type carrierRequest struct {
	CarrierCode string `json:"carrier_code"`
}

func (h *ShippingHandlers) chooseCarrier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req carrierRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.shipping.ChooseCarrier(ctx, key, req.CarrierCode)
	if err != nil {
		writeShippingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

type selectQuoteRequest struct {
	Index int `json:"index"`
}

func (h *ShippingHandlers) selectQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sessionKeyFromRequest(r)

	var req selectQuoteRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.shipping.SelectQuote(ctx, key, req.Index)
	if err != nil {
		writeShippingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: buildSessionPayload(session)})
}

func writeShippingError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDestinationRequired):
		httpx.WriteError(ctx, w, httpx.NewError("destination_required", "set a destination before choosing a carrier", http.StatusConflict))
	case errors.Is(err, services.ErrShippingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrShippingUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("shipping_service_unavailable", "shipping service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("shipping_error", "shipping operation failed", http.StatusInternalServerError))
	}
}
