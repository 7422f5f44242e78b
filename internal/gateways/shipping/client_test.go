package shipping

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/tokosetara/api/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientDeps{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		OriginID:   "3171010",
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func districtDestination() domain.Destination {
	return domain.Destination{ProvinceID: "31", CityID: "3171", DistrictID: "3171060"}
}

func TestFetchQuotesParsesEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Mixed cost encodings and one unusable entry.
		w.Write([]byte(`{"data":[
			{"courier":"jne","service":"REG","description":"Reguler","cost":15000,"etd":"2-3"},
			{"courier":"jne","service":"YES","cost":"27000","etd":"1-1"},
			{"courier":"jne","service":"","cost":9000},
			{"courier":"jne","service":"OKE","cost":"abc"}
		]}`))
	})

	quotes, err := client.FetchQuotes(context.Background(), districtDestination(), "jne")
	if err != nil {
		t.Fatalf("FetchQuotes error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 usable quotes, got %d: %+v", len(quotes), quotes)
	}
	if quotes[0].Cost != 15000 || quotes[0].ServiceName != "REG" {
		t.Fatalf("unexpected first quote: %+v", quotes[0])
	}
	if quotes[1].Cost != 27000 {
		t.Fatalf("string-encoded cost not parsed: %+v", quotes[1])
	}
}

func TestFetchQuotesEmptyListIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	quotes, err := client.FetchQuotes(context.Background(), districtDestination(), "sicepat")
	if err != nil {
		t.Fatalf("FetchQuotes error: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected empty quote set, got %+v", quotes)
	}
}

func TestFetchQuotesServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.FetchQuotes(context.Background(), districtDestination(), "jne")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestFetchQuotesRejectsMissingInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not reach the server")
	})

	if _, err := client.FetchQuotes(context.Background(), domain.Destination{}, "jne"); !errors.Is(err, ErrRateBadRequest) {
		t.Fatalf("expected ErrRateBadRequest for missing destination, got %v", err)
	}
	if _, err := client.FetchQuotes(context.Background(), districtDestination(), " "); !errors.Is(err, ErrRateBadRequest) {
		t.Fatalf("expected ErrRateBadRequest for missing carrier, got %v", err)
	}
}
