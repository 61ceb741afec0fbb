package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendormart/ledger/internal/models"
)

type OrderService interface {
	// UpdateStatus moves the order to the given status
	UpdateStatus(ctx context.Context, number, status string) (*models.Order, error)
	// Refund refunds a delivered order
	Refund(ctx context.Context, number string) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order lifecycle requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	Number        string `json:"number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Total         string `json:"total"`
}

func writeOrder(w http.ResponseWriter, order *models.Order) {
	resp := orderResponse{
		Number:        order.Number,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.TotalAmount.StringFixed(2),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}

// UpdateOrderStatus moves the order to a new status
// 200 — status updated;
// 400 — malformed request;
// 404 — order does not exist;
// 409 — transition is not allowed from the current status;
// 422 — order cannot be settled;
// 500 — internal server error.
func (oh *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "number")
		if number == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req updateStatusRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.UpdateStatus(r.Context(), number, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "invalid status transition", http.StatusConflict)
			case errors.Is(err, models.ErrOrderNotSettleable), errors.Is(err, models.ErrOrderHasNoItems):
				http.Error(w, "order cannot be settled", http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeOrder(w, order)
	}
}

// RefundOrder refunds a delivered order and reverses its settlement
// 200 — refund processed;
// 404 — order does not exist;
// 409 — order is not refundable;
// 500 — internal server error.
func (oh *OrderHandler) RefundOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "number")
		if number == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.Refund(r.Context(), number)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "order is not refundable", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeOrder(w, order)
	}
}
