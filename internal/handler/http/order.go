package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/akormin/logoorder/internal/attach"
	"github.com/akormin/logoorder/internal/ident"
	"github.com/akormin/logoorder/internal/models"
	"github.com/akormin/logoorder/internal/service"
	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 32 << 20

type OrderService interface {
	// Create validates the submission and persists the order with its attachments
	Create(ctx context.Context, req service.CreateOrder, files []attach.File) (*models.Order, error)
	// Get returns one order by identifier
	Get(ctx context.Context, id string) (*models.Order, error)
	// List returns all orders
	List(ctx context.Context) ([]models.Order, error)
	// UpdateStatus overwrites the order status
	UpdateStatus(ctx context.Context, id, status string) error
	// Capture records a payment capture against the order
	Capture(ctx context.Context, id, captureID string) error
	// Verify recomputes and stores the verified bit
	Verify(ctx context.Context, id string) (bool, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc        OrderService
	idStrategy string
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService, idStrategy string) *OrderHandler {
	return &OrderHandler{svc: svc, idStrategy: idStrategy}
}

type orderResponse struct {
	ID            string   `json:"id"`
	UniqueID      string   `json:"unique_id,omitempty"`
	Name          string   `json:"name"`
	Facebook      string   `json:"facebook,omitempty"`
	Email         string   `json:"email"`
	OrderType     string   `json:"order_type"`
	Details       string   `json:"details"`
	Filenames     []string `json:"filenames"`
	Status        string   `json:"status"`
	PaypalOrderID string   `json:"paypal_order_id,omitempty"`
	Verified      bool     `json:"verified"`
}

func (oh *OrderHandler) orderResp(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		Name:          order.Name,
		Facebook:      order.Facebook,
		Email:         order.Email,
		OrderType:     order.OrderType,
		Details:       order.Details,
		Filenames:     order.Filenames,
		Status:        order.Status,
		PaypalOrderID: order.PaypalOrderID,
		Verified:      order.Verified,
	}
	if resp.Filenames == nil {
		resp.Filenames = []string{}
	}
	if oh.idStrategy == ident.StrategyToken {
		resp.UniqueID = order.ID
	}
	return resp
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

type createOrderResponse struct {
	ID         string `json:"id"`
	PaymentURL string `json:"payment_url"`
}

// CreateOrder accepts a new order submission
// 201 — заказ создан, в ответе идентификатор и адрес страницы оплаты;
// 400 — отсутствует обязательное поле;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			if !errors.Is(err, http.ErrNotMultipart) {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			if err := r.ParseForm(); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
		}

		req := service.CreateOrder{
			Name:      r.FormValue("name"),
			Facebook:  r.FormValue("facebook"),
			Email:     r.FormValue("email"),
			OrderType: r.FormValue("order_type"),
			Details:   r.FormValue("details"),
		}

		files := []attach.File{}
		if r.MultipartForm != nil {
			for _, fh := range r.MultipartForm.File["images"] {
				f, err := fh.Open()
				if err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				defer f.Close()
				files = append(files, attach.File{Name: fh.Filename, Data: f})
			}
		}

		order, err := oh.svc.Create(r.Context(), req, files)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				http.Error(w, models.ErrValidation.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, createOrderResponse{
			ID:         order.ID,
			PaymentURL: fmt.Sprintf("/payment/%s", order.ID),
		})
	}
}

// GetOrder returns one order
// 200 — успешная обработка запроса;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		order, err := oh.svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, oh.orderResp(order))
	}
}

// ListOrders returns all orders keyed by identifier
// 200 — успешная обработка запроса;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := oh.svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := map[string]orderResponse{}
		for i := range orders {
			resp[orders[i].ID] = oh.orderResp(&orders[i])
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// UpdateOrderStatus overwrites the order status
// 200 — статус обновлён;
// 400 — статус не передан;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		req := updateStatusRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		err := oh.svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrEmptyStatus):
				http.Error(w, "no status provided", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
