package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akormin/logoorder/internal/models"
	"github.com/go-chi/chi/v5"
)

// PaymentHandler serves the payment-widget config and the capture/verify calls
type PaymentHandler struct {
	svc            OrderService
	amount         string
	paypalClientID string
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc OrderService, amount, paypalClientID string) *PaymentHandler {
	return &PaymentHandler{
		svc:            svc,
		amount:         amount,
		paypalClientID: paypalClientID,
	}
}

type paymentViewResponse struct {
	OrderID        string `json:"order_id"`
	Amount         string `json:"amount"`
	PaypalClientID string `json:"paypal_client_id"`
}

// PaymentView returns the config the payment widget needs for an order
// 200 — успешная обработка запроса;
// 404 — заказ не найден.
func (ph *PaymentHandler) PaymentView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		order, err := ph.svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, paymentViewResponse{
			OrderID:        order.ID,
			Amount:         ph.amount,
			PaypalClientID: ph.paypalClientID,
		})
	}
}

type captureRequest struct {
	ID string `json:"id"`
}

// CaptureOrder records a payment capture against the order
// 200 — оплата зафиксирована;
// 400 — идентификатор захвата не передан;
// 402 — оплата не подтверждена;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) CaptureOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		req := captureRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		err := ph.svc.Capture(r.Context(), id, req.ID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrEmptyCaptureID):
				http.Error(w, "no capture id provided", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrPaymentRejected):
				http.Error(w, "payment not confirmed", http.StatusPaymentRequired)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// VerifyOrder recomputes the verified bit for the order
// 200 — успешная обработка запроса;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) VerifyOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		verified, err := ph.svc.Verify(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, verifyResponse{Verified: verified})
	}
}
