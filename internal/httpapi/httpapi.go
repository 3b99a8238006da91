// Package httpapi exposes the POS engine over JSON HTTP for the terminal
// frontend. Handlers stay thin: decode, call the service, map errors.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/metrics"
	"ba9alino/backend/internal/service"
	"ba9alino/backend/internal/store"
)

type API struct {
	svc           *service.Service
	log           *zap.Logger
	allowedOrigin string
}

func New(svc *service.Service, log *zap.Logger, allowedOrigin string) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{svc: svc, log: log, allowedOrigin: allowedOrigin}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/api/v1/sessions/open", a.handleSessionOpen)
	mux.HandleFunc("/api/v1/sessions/close", a.handleSessionClose)
	mux.HandleFunc("/api/v1/sessions/", a.handleSessionActions)

	mux.HandleFunc("/api/v1/cart", a.handleCart)
	mux.HandleFunc("/api/v1/cart/lines", a.handleAddLine)
	mux.HandleFunc("/api/v1/cart/lines/quantity", a.handleLineQuantity)
	mux.HandleFunc("/api/v1/cart/lines/remove", a.handleLineRemove)
	mux.HandleFunc("/api/v1/cart/lines/restore", a.handleLineRestore)
	mux.HandleFunc("/api/v1/cart/lines/gift", a.handleLineGift)
	mux.HandleFunc("/api/v1/cart/lines/discount", a.handleLineDiscount)
	mux.HandleFunc("/api/v1/cart/discount", a.handleCartDiscount)
	mux.HandleFunc("/api/v1/cart/client", a.handleCartClient)
	mux.HandleFunc("/api/v1/cart/hold", a.handleCartHold)
	mux.HandleFunc("/api/v1/cart/held", a.handleCartHeld)
	mux.HandleFunc("/api/v1/cart/resume", a.handleCartResume)

	mux.HandleFunc("/api/v1/checkout", a.handleCheckout)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(startedAt)))
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// --- cash sessions ---

func (a *API) handleSessionOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := a.svc.OpenCashSession(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, sess)
}

func (a *API) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.CloseSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.svc.CloseCashSession(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

// handleSessionActions serves /api/v1/sessions/{id}/summary.
func (a *API) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "summary" {
		a.writeError(w, http.StatusNotFound, errors.New("unknown session action"))
		return
	}
	sum, err := a.svc.SessionSummary(r.Context(), parts[0])
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, sum)
}

// --- cart ---

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	inv, err := a.svc.Cart(r.URL.Query().Get("session_id"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleAddLine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.AddLine(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

type lineEditRequest struct {
	SessionID       string  `json:"session_id"`
	LineID          string  `json:"line_id"`
	Quantity        float64 `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

func (a *API) handleLineQuantity(w http.ResponseWriter, r *http.Request) {
	a.lineEdit(w, r, func(req lineEditRequest) (*domain.Invoice, error) {
		return a.svc.SetLineQuantity(r.Context(), req.SessionID, req.LineID, req.Quantity)
	})
}

func (a *API) handleLineRemove(w http.ResponseWriter, r *http.Request) {
	a.lineEdit(w, r, func(req lineEditRequest) (*domain.Invoice, error) {
		return a.svc.RemoveLine(r.Context(), req.SessionID, req.LineID)
	})
}

func (a *API) handleLineRestore(w http.ResponseWriter, r *http.Request) {
	a.lineEdit(w, r, func(req lineEditRequest) (*domain.Invoice, error) {
		return a.svc.RestoreLine(r.Context(), req.SessionID, req.LineID)
	})
}

func (a *API) handleLineGift(w http.ResponseWriter, r *http.Request) {
	a.lineEdit(w, r, func(req lineEditRequest) (*domain.Invoice, error) {
		return a.svc.ToggleGift(r.Context(), req.SessionID, req.LineID)
	})
}

func (a *API) handleLineDiscount(w http.ResponseWriter, r *http.Request) {
	a.lineEdit(w, r, func(req lineEditRequest) (*domain.Invoice, error) {
		return a.svc.SetLineDiscount(r.Context(), req.SessionID, req.LineID, req.DiscountPercent)
	})
}

func (a *API) lineEdit(w http.ResponseWriter, r *http.Request, edit func(lineEditRequest) (*domain.Invoice, error)) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req lineEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := edit(req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleCartDiscount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		SessionID       string  `json:"session_id"`
		DiscountPercent float64 `json:"discount_percent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.SetInvoiceDiscount(r.Context(), req.SessionID, req.DiscountPercent)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleCartClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		ClientID  string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.SetClient(r.Context(), req.SessionID, req.ClientID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleCartHold(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.HoldCart(r.Context(), req.SessionID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleCartHeld(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	list, err := a.svc.ListHeld(r.URL.Query().Get("session_id"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"held": list})
}

func (a *API) handleCartResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		InvoiceID string `json:"invoice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.ResumeHeld(r.Context(), req.SessionID, req.InvoiceID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, inv)
}

// --- checkout ---

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := a.svc.Checkout(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, inv)
}

// --- plumbing ---

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrCartNotEmpty):
		a.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		a.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrConflict), errors.Is(err, service.ErrOversell):
		a.writeError(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrVarianceNote):
		a.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		a.writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies stay generic so backend details never reach the client.
	msg := err.Error()
	if status >= 500 {
		a.log.Error("internal error", zap.Int("status", status), zap.Error(err))
		msg = "internal server error"
	}
	a.writeJSON(w, status, map[string]any{"error": msg})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
}
