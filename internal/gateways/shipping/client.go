package shipping

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

const maxRateResponseBytes = 1 << 20

var (
	// ErrRateUnavailable indicates the rate API could not be reached or answered
	// with a server error.
	ErrRateUnavailable = errors.New("shipping gateway: rate service unavailable")
	// ErrRateBadRequest indicates the rate API rejected the request.
	ErrRateBadRequest = errors.New("shipping gateway: rate request rejected")
)

// ClientDeps wires the HTTP transport and upstream coordinates.
type ClientDeps struct {
	BaseURL    string
	APIKey     string
	OriginID   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client fetches carrier quotes from the external rate API.
type Client struct {
	baseURL  string
	apiKey   string
	originID string
	http     *http.Client
}

// NewClient validates dependencies and returns a rate client.
func NewClient(deps ClientDeps) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if base == "" {
		return nil, errors.New("shipping gateway: base URL is required")
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
		baseURL:  base,
		apiKey:   strings.TrimSpace(deps.APIKey),
		originID: strings.TrimSpace(deps.OriginID),
		http:     httpClient,
	}, nil
}

type rateRequest struct {
	Origin      string `json:"origin"`
	DistrictID  string `json:"destination_district_id,omitempty"`
	PostalCode  string `json:"destination_postal_code,omitempty"`
	RawAddress  string `json:"destination_address,omitempty"`
	CarrierCode string `json:"courier"`
}

// rateEntry tolerates the upstream's loose typing: cost arrives as a number
// or a numeric string depending on the carrier adapter.
type rateEntry struct {
	Courier     string          `json:"courier"`
	Service     string          `json:"service"`
	Description string          `json:"description"`
	Cost        json.RawMessage `json:"cost"`
	ETD         string          `json:"etd"`
}

type rateResponse struct {
	Data []rateEntry `json:"data"`
}

// FetchQuotes asks the rate API for quotes for one carrier to one destination.
// A successful response with zero usable entries returns an empty slice, not
// an error: the caller distinguishes "no services" from "fetch failed".
func (c *Client) FetchQuotes(ctx context.Context, destination domain.Destination, carrierCode string) ([]domain.ShippingQuote, error) {
	carrierCode = strings.ToLower(strings.TrimSpace(carrierCode))
	if carrierCode == "" {
		return nil, fmt.Errorf("%w: carrier code is required", ErrRateBadRequest)
	}
	if !destination.HasTarget() {
		return nil, fmt.Errorf("%w: destination is required", ErrRateBadRequest)
	}

	payload := rateRequest{
		Origin:      c.originID,
		CarrierCode: carrierCode,
	}
	if destination.DistrictID != "" {
		payload.DistrictID = destination.DistrictID
	} else {
		payload.PostalCode = destination.PostalCode
		payload.RawAddress = destination.RawAddress
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateBadRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrRateBadRequest, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRateResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	var decoded rateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	quotes := make([]domain.ShippingQuote, 0, len(decoded.Data))
	for _, entry := range decoded.Data {
		quote, ok := entry.toQuote(carrierCode)
		if !ok {
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// toQuote converts one upstream entry, dropping anything it cannot trust.
// A malformed cost never becomes a zero-cost quote.
func (e rateEntry) toQuote(fallbackCarrier string) (domain.ShippingQuote, bool) {
	service := strings.TrimSpace(e.Service)
	if service == "" {
		return domain.ShippingQuote{}, false
	}

	cost, ok := parseCost(e.Cost)
	if !ok || cost < 0 {
		return domain.ShippingQuote{}, false
	}

	carrier := strings.ToLower(strings.TrimSpace(e.Courier))
	if carrier == "" {
		carrier = fallbackCarrier
	}

	return domain.ShippingQuote{
		CarrierCode:       carrier,
		ServiceName:       service,
		Description:       strings.TrimSpace(e.Description),
		Cost:              cost,
		EstimatedDuration: strings.TrimSpace(e.ETD),
	}, true
}

func parseCost(raw json.RawMessage) (int64, bool) {
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
		// Some adapters send costs as floats. Accept only whole amounts.
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	}
	return value, true
}
