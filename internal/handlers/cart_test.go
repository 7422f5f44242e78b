package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tokosetara/api/internal/repositories/memory"
	"github.com/tokosetara/api/internal/services"
)

func newCartRouterForTest(t *testing.T) http.Handler {
	t.Helper()
	repo := memory.NewSessionRepository()
	clock := func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }

	carts, err := services.NewCartService(services.CartServiceDeps{Repository: repo, Clock: clock})
	if err != nil {
		t.Fatalf("NewCartService error: %v", err)
	}
	vouchers, err := services.NewVoucherService(services.VoucherServiceDeps{
		Repository: repo,
		Catalog: services.NewStaticVoucherCatalog([]services.Voucher{
			{ID: "v1", Code: "HEMAT10", Kind: "percentage", PercentageAmount: 10},
		}),
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("NewVoucherService error: %v", err)
	}

	return NewRouter(
		WithMiddlewares(SessionKeyMiddleware()),
		WithCartRoutes(NewCartHandlers(carts, vouchers).Routes),
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path, sessionKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionKey != "" {
		req.Header.Set(SessionKeyHeader, sessionKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCartAddItemEndpoint(t *testing.T) {
	router := newCartRouterForTest(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		`{"product_id":"p1","name":"Tote","unit_price":149000,"quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Session struct {
			ItemsCount int `json:"items_count"`
			Breakdown  struct {
				Subtotal   int64 `json:"subtotal"`
				GrandTotal int64 `json:"grand_total"`
			} `json:"breakdown"`
		} `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session.ItemsCount != 1 || resp.Session.Breakdown.Subtotal != 298000 {
		t.Fatalf("unexpected response: %+v", resp.Session)
	}
	if resp.Session.Breakdown.GrandTotal != 298000 {
		t.Fatalf("expected grand total without shipping, got %d", resp.Session.Breakdown.GrandTotal)
	}
}

func TestCartVoucherEndpoints(t *testing.T) {
	router := newCartRouterForTest(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		`{"product_id":"p1","name":"Tote","unit_price":149000,"quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/cart/voucher", "sess-1", `{"code":"hemat10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply voucher: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session struct {
			Voucher *struct {
				Code string `json:"code"`
			} `json:"voucher"`
			Breakdown struct {
				Discount   int64 `json:"discount"`
				GrandTotal int64 `json:"grand_total"`
			} `json:"breakdown"`
		} `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session.Voucher == nil || resp.Session.Voucher.Code != "HEMAT10" {
		t.Fatalf("expected voucher in response, got %+v", resp.Session)
	}
	if resp.Session.Breakdown.Discount != 29800 || resp.Session.Breakdown.GrandTotal != 268200 {
		t.Fatalf("unexpected breakdown: %+v", resp.Session.Breakdown)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/cart/voucher", "sess-1", `{"code":"NOPE"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown voucher: expected 404, got %d", rec.Code)
	}
}

func TestCartRemoveMissingItemReturns404(t *testing.T) {
	router := newCartRouterForTest(t)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/ghost", "sess-1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionKeyMinting(t *testing.T) {
	router := newCartRouterForTest(t)

	// No session key supplied: one is minted and echoed back.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	minted := rec.Header().Get(SessionKeyHeader)
	if minted == "" {
		t.Fatalf("expected minted session key header")
	}

	// A supplied key is echoed unchanged.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-keep", "")
	if got := rec.Header().Get(SessionKeyHeader); got != "sess-keep" {
		t.Fatalf("expected session key preserved, got %q", got)
	}
}
