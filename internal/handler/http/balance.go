package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendormart/ledger/internal/models"
)

type BalanceService interface {
	// GetBalance returns current vendor withdrawal balance
	GetBalance(ctx context.Context, vendorID uint64) (decimal.Decimal, error)
	// GetEarnings returns vendor earnings
	GetEarnings(ctx context.Context, vendorID uint64) ([]models.Earning, error)
}

// BalanceHandler represents HTTP handler for balance-related requests
type BalanceHandler struct {
	svc BalanceService
}

// NewBalanceHandler creates new BalanceHandler instance
func NewBalanceHandler(svc BalanceService) *BalanceHandler {
	return &BalanceHandler{svc: svc}
}

type balanceResponse struct {
	Withdrawable string `json:"withdrawable"`
}

// GetVendorBalance returns current vendor withdrawal balance
// 200 — request processed;
// 401 — vendor is not authenticated;
// 500 — internal server error.
func (bh *BalanceHandler) GetVendorBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		balance, err := bh.svc.GetBalance(r.Context(), payload.VendorID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		balanceResp := balanceResponse{
			Withdrawable: balance.StringFixed(2),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(balanceResp); err != nil {
			return
		}
	}
}

type earningResponse struct {
	OrderID    uint64 `json:"order_id"`
	Gross      string `json:"gross"`
	Commission string `json:"commission"`
	Net        string `json:"net"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// GetVendorEarnings returns vendor earnings, newest first
// 200 — request processed;
// 204 — vendor has no earnings;
// 401 — vendor is not authenticated;
// 500 — internal server error.
func (bh *BalanceHandler) GetVendorEarnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		earnings, err := bh.svc.GetEarnings(r.Context(), payload.VendorID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "no content", http.StatusNoContent)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		var resp []earningResponse

		for _, earning := range earnings {
			resp = append(resp, earningResponse{
				OrderID:    earning.OrderID,
				Gross:      earning.GrossAmount.StringFixed(2),
				Commission: earning.CommissionAmount.StringFixed(2),
				Net:        earning.NetAmount.StringFixed(2),
				Status:     earning.Status,
				CreatedAt:  earning.CreatedAt.Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
