package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "github.com/tokosetara/api/internal/domain"
)

const maxOrderResponseBytes = 1 << 20

var (
	// ErrCommerceUnavailable indicates the commerce API could not be reached or
	// answered with a server error.
	ErrCommerceUnavailable = errors.New("commerce gateway: service unavailable")
	// ErrCommerceBadRequest indicates the commerce API rejected the request.
	ErrCommerceBadRequest = errors.New("commerce gateway: request rejected")
	// ErrOrderNotFound indicates the reference is unknown upstream.
	ErrOrderNotFound = errors.New("commerce gateway: order not found")
)

// ClientDeps wires the HTTP transport and upstream coordinates.
type ClientDeps struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the external commerce API that records transactions and
// serves order lookups.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient validates dependencies and returns a commerce client.
func NewClient(deps ClientDeps) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if base == "" {
		return nil, errors.New("commerce gateway: base URL is required")
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		timeout := deps.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(deps.APIKey),
		http:    httpClient,
	}, nil
}

// CreateTransactionRequest carries the finalised order the storefront submits.
type CreateTransactionRequest struct {
	Buyer        domain.BuyerContact
	Items        []domain.LineItem
	Address      string
	CourierCode  string
	ServiceName  string
	VoucherCode  string
	Breakdown    domain.PriceBreakdown
	PaymentKind  string
	PaymentToken string
}

type transactionPayload struct {
	BuyerName    string            `json:"buyer_name"`
	BuyerEmail   string            `json:"buyer_email"`
	BuyerPhone   string            `json:"buyer_phone"`
	Address      string            `json:"address"`
	Courier      string            `json:"courier"`
	Service      string            `json:"service"`
	VoucherCode  string            `json:"voucher_code,omitempty"`
	Subtotal     int64             `json:"subtotal"`
	Discount     int64             `json:"discount"`
	ShippingCost int64             `json:"shipping_cost"`
	GrandTotal   int64             `json:"grand_total"`
	PaymentKind  string            `json:"payment_kind"`
	PaymentToken string            `json:"payment_token,omitempty"`
	Items        []transactionItem `json:"items"`
}

type transactionItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type transactionResponse struct {
	Reference string `json:"reference"`
}

// CreateTransaction records the order upstream and returns its reference.
func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: at least one item is required", ErrCommerceBadRequest)
	}

	payload := transactionPayload{
		BuyerName:    req.Buyer.Name,
		BuyerEmail:   req.Buyer.Email,
		BuyerPhone:   req.Buyer.Phone,
		Address:      req.Address,
		Courier:      req.CourierCode,
		Service:      req.ServiceName,
		VoucherCode:  req.VoucherCode,
		Subtotal:     req.Breakdown.Subtotal,
		Discount:     req.Breakdown.Discount,
		ShippingCost: req.Breakdown.ShippingCost,
		GrandTotal:   req.Breakdown.GrandTotal,
		PaymentKind:  req.PaymentKind,
		PaymentToken: req.PaymentToken,
	}
	for _, item := range req.Items {
		payload.Items = append(payload.Items, transactionItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	raw, err := c.do(ctx, http.MethodPost, "/v1/transactions", payload)
	if err != nil {
		return "", err
	}

	var decoded transactionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}
	reference := strings.TrimSpace(decoded.Reference)
	if reference == "" {
		return "", fmt.Errorf("%w: missing reference in response", ErrCommerceUnavailable)
	}
	return reference, nil
}

// orderPayload tolerates the upstream's loose typing: the two status codes
// arrive as numbers or numeric strings, and the shipment block is sometimes a
// string containing JSON rather than an object.
type orderPayload struct {
	Reference      string          `json:"reference"`
	BuyerName      string          `json:"buyer_name"`
	BuyerEmail     string          `json:"buyer_email"`
	BuyerPhone     string          `json:"buyer_phone"`
	Address        string          `json:"address"`
	PaymentStatus  json.RawMessage `json:"payment_status"`
	ShipmentStatus json.RawMessage `json:"shipment_status"`
	Shipment       json.RawMessage `json:"shipment"`
	Subtotal       json.RawMessage `json:"subtotal"`
	Discount       json.RawMessage `json:"discount"`
	ShippingCost   json.RawMessage `json:"shipping_cost"`
	GrandTotal     json.RawMessage `json:"grand_total"`
	Items          []struct {
		ProductID string          `json:"product_id"`
		Name      string          `json:"name"`
		UnitPrice json.RawMessage `json:"unit_price"`
		Quantity  json.RawMessage `json:"quantity"`
	} `json:"items"`
}

type shipmentPayload struct {
	Courier       string `json:"courier"`
	ReceiptNumber string `json:"receipt_number"`
}

// LookupOrder fetches an order by its reference.
func (c *Client) LookupOrder(ctx context.Context, reference string) (domain.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.Order{}, fmt.Errorf("%w: reference is required", ErrCommerceBadRequest)
	}

	raw, err := c.do(ctx, http.MethodGet, "/v1/orders/"+reference, nil)
	if err != nil {
		return domain.Order{}, err
	}

	var decoded orderPayload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}

	order := domain.Order{
		Reference: firstNonEmpty(decoded.Reference, reference),
		Buyer: domain.BuyerContact{
			Name:  strings.TrimSpace(decoded.BuyerName),
			Email: strings.TrimSpace(decoded.BuyerEmail),
			Phone: strings.TrimSpace(decoded.BuyerPhone),
		},
		Address: strings.TrimSpace(decoded.Address),
		Signal: domain.RawOrderSignal{
			PaymentStatus:  parseStatusCode(decoded.PaymentStatus),
			ShipmentStatus: parseStatusCode(decoded.ShipmentStatus),
		},
		Breakdown: domain.PriceBreakdown{
			Subtotal:     parseAmount(decoded.Subtotal),
			Discount:     parseAmount(decoded.Discount),
			ShippingCost: parseAmount(decoded.ShippingCost),
			GrandTotal:   parseAmount(decoded.GrandTotal),
		},
	}

	if shipment, ok := parseShipment(decoded.Shipment); ok {
		order.Courier = shipment.Courier
		order.ReceiptNumber = shipment.ReceiptNumber
	}

	for _, item := range decoded.Items {
		quantity := parseAmount(item.Quantity)
		order.Items = append(order.Items, domain.LineItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: parseAmount(item.UnitPrice),
			Quantity:  int(quantity),
		})
	}

	return order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommerceBadRequest, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrOrderNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrCommerceUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrCommerceBadRequest, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxOrderResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}
	return raw, nil
}

// parseStatusCode reads a status code that may be a number or a numeric
// string. Anything unreadable maps to -1, which no lifecycle rule matches,
// so the order falls through to the pending default instead of a guess.
func parseStatusCode(raw json.RawMessage) int {
	value, ok := parseLooseInt(raw)
	if !ok {
		return -1
	}
	return int(value)
}

func parseAmount(raw json.RawMessage) int64 {
	value, ok := parseLooseInt(raw)
	if !ok {
		return 0
	}
	return value
}

func parseLooseInt(raw json.RawMessage) (int64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}
	trimmed = strings.Trim(trimmed, `"`)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parseShipment(raw json.RawMessage) (shipmentPayload, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return shipmentPayload{}, false
	}

	// Object form first, then the string-encoded form.
	var shipment shipmentPayload
	if err := json.Unmarshal(raw, &shipment); err == nil {
		return shipment, true
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return shipmentPayload{}, false
	}
	if err := json.Unmarshal([]byte(encoded), &shipment); err != nil {
		return shipmentPayload{}, false
	}
	return shipment, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
