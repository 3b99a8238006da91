package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ba9alino/backend/internal/config"
	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/service"
	"ba9alino/backend/internal/store/memory"
)

func newTestAPI() *API {
	repo := memory.NewSeeded()
	svc := service.New(repo, repo, nil, nil, config.Config{
		DefaultWarehouseID: "wh-main",
		OversellPolicy:     config.OversellAllow,
		CatalogCacheTTL:    time.Minute,
	})
	return New(svc, nil, "*")
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSaleFlowOverHTTP(t *testing.T) {
	h := newTestAPI().Handler()

	// Open a session.
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/open", domain.OpenSessionRequest{
		EmployeeID:       "emp-1",
		OpeningCashCents: 10000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	sess := decode[domain.CashSession](t, rec)

	// Opening again while one is open conflicts.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/open", domain.OpenSessionRequest{EmployeeID: "emp-1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second open: expected 409, got %d", rec.Code)
	}

	// Add two tea boxes.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/cart/lines", domain.AddLineRequest{
		SessionID: sess.ID,
		ProductID: "prod-atay",
		Quantity:  2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add line: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	inv := decode[domain.Invoice](t, rec)
	if inv.SubtotalCents != 4800 {
		t.Fatalf("expected subtotal 4800, got %d", inv.SubtotalCents)
	}

	// Settle in cash.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout", domain.CheckoutRequest{
		SessionID:     sess.ID,
		PaymentMethod: domain.PaymentCash,
		PaidCents:     4800,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	settled := decode[domain.Invoice](t, rec)
	if settled.Status != domain.InvoicePaid || settled.Number == "" {
		t.Fatalf("unexpected settled invoice: %+v", settled)
	}

	// Summary reflects the sale.
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s/summary", sess.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", rec.Code)
	}
	sum := decode[domain.SessionSummary](t, rec)
	if sum.ExpectedCashCents != 14800 {
		t.Fatalf("expected drawer 14800, got %d", sum.ExpectedCashCents)
	}

	// Close with matching declared cash.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/close", domain.CloseSessionRequest{
		SessionID:         sess.ID,
		DeclaredCashCents: 14800,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	report := decode[domain.ReconciliationReport](t, rec)
	if report.DifferenceCents != 0 {
		t.Fatalf("expected zero variance, got %d", report.DifferenceCents)
	}
}

func TestCloseWithVarianceNeedsNote(t *testing.T) {
	h := newTestAPI().Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/open", domain.OpenSessionRequest{
		EmployeeID:       "emp-1",
		OpeningCashCents: 5000,
	})
	sess := decode[domain.CashSession](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/close", domain.CloseSessionRequest{
		SessionID:         sess.ID,
		DeclaredCashCents: 4000,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without note, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/close", domain.CloseSessionRequest{
		SessionID:         sess.ID,
		DeclaredCashCents: 4000,
		Note:              "نقص مبرر",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with note, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/cart?session_id=sess-nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/checkout", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
