package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/platform/httpx"
	"github.com/tokosetara/api/internal/services"
)

// OrderHandlers serves buyer-facing order tracking.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs handlers over the order service.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{reference}", h.track)
}

func (h *OrderHandlers) track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reference := chi.URLParam(r, "reference")

	status, err := h.orders.Track(ctx, reference)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderStatusResponse(status))
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "order lookup failed", http.StatusInternalServerError))
	}
}

type orderStatusResponse struct {
	Order orderPayload `json:"order"`
}

type orderPayload struct {
	Reference     string            `json:"reference"`
	Lifecycle     string            `json:"lifecycle"`
	Terminal      bool              `json:"terminal"`
	Buyer         *buyerPayload     `json:"buyer,omitempty"`
	Items         []lineItemPayload `json:"items"`
	Address       string            `json:"address,omitempty"`
	Courier       string            `json:"courier,omitempty"`
	ReceiptNumber string            `json:"receipt_number,omitempty"`
	Timeline      timelinePayload   `json:"timeline"`
	Breakdown     breakdownPayload  `json:"breakdown"`
}

type timelinePayload struct {
	Steps     []timelineStepPayload `json:"steps"`
	StepIndex int                   `json:"step_index"`
	Progress  int                   `json:"progress"`
	OffPath   bool                  `json:"off_path"`
}

type timelineStepPayload struct {
	Milestone string `json:"milestone"`
	State     string `json:"state"`
}

func buildOrderStatusResponse(status services.OrderStatus) orderStatusResponse {
	payload := orderPayload{
		Reference:     status.Order.Reference,
		Lifecycle:     string(status.Lifecycle),
		Terminal:      status.Lifecycle.IsTerminal(),
		Items:         make([]lineItemPayload, 0, len(status.Order.Items)),
		Address:       status.Order.Address,
		Courier:       status.Order.Courier,
		ReceiptNumber: status.Order.ReceiptNumber,
		Timeline:      buildTimelinePayload(status.Timeline),
		Breakdown:     buildBreakdownPayload(status.Order.Breakdown),
	}
	for _, item := range status.Order.Items {
		payload.Items = append(payload.Items, lineItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	if status.Order.Buyer.Name != "" {
		payload.Buyer = &buyerPayload{
			Name:  status.Order.Buyer.Name,
			Email: status.Order.Buyer.Email,
			Phone: status.Order.Buyer.Phone,
		}
	}
	return orderStatusResponse{Order: payload}
}

func buildTimelinePayload(timeline domain.Timeline) timelinePayload {
	payload := timelinePayload{
		Steps:     make([]timelineStepPayload, 0, len(timeline.Steps)),
		StepIndex: timeline.StepIndex,
		Progress:  timeline.Progress,
		OffPath:   timeline.OffPath,
	}
	for _, step := range timeline.Steps {
		payload.Steps = append(payload.Steps, timelineStepPayload{
			Milestone: string(step.Milestone),
			State:     string(step.State),
		})
	}
	return payload
}
