// Package payment implements the leaf service of the chain: it simulates
// payment approval or decline and terminates the call chain.
package payment

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Vijay-papanaboina/LGTM-stack/internal/httpx"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

type processRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

type approvedResponse struct {
	Status    string  `json:"status"`
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

type declinedResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

// Handler serves the payment endpoints.
type Handler struct {
	metrics     *Metrics
	declineRate float64
	workMin     time.Duration
	workMax     time.Duration
}

// NewHandler creates a payment handler. declineRate is the simulated
// probability in [0,1] that a payment is declined.
func NewHandler(metrics *Metrics, declineRate float64, workMin, workMax time.Duration) *Handler {
	return &Handler{
		metrics:     metrics,
		declineRate: declineRate,
		workMin:     workMin,
		workMax:     workMax,
	}
}

// ProcessPayment handles POST /payments.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.LoggerFromContext(ctx)
	start := time.Now()

	var req processRequest
	if err := httpx.Decode(r, &req); err != nil {
		log.Warn(ctx, "invalid payment request body", observe.Field{Key: "error", Value: err.Error()})
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderID == "" || req.Amount <= 0 {
		log.Warn(ctx, "rejected payment request",
			observe.Field{Key: "order_id", Value: req.OrderID},
			observe.Field{Key: "amount", Value: req.Amount},
		)
		httpx.Error(w, http.StatusBadRequest, "orderId and a positive amount are required")
		return
	}

	h.simulateWork(ctx)

	if rand.Float64() < h.declineRate {
		h.metrics.RecordPayment(ctx, "declined", time.Since(start))
		log.Warn(ctx, "payment declined",
			observe.Field{Key: "order_id", Value: req.OrderID},
			observe.Field{Key: "amount", Value: req.Amount},
		)
		httpx.WriteJSON(w, http.StatusBadRequest, declinedResponse{
			Status:  "declined",
			OrderID: req.OrderID,
			Error:   "Card declined",
		})
		return
	}

	paymentID := uuid.NewString()
	h.metrics.RecordPayment(ctx, "approved", time.Since(start))
	log.Info(ctx, "payment approved",
		observe.Field{Key: "order_id", Value: req.OrderID},
		observe.Field{Key: "payment_id", Value: paymentID},
		observe.Field{Key: "amount", Value: req.Amount},
	)
	httpx.WriteJSON(w, http.StatusOK, approvedResponse{
		Status:    "approved",
		PaymentID: paymentID,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
	})
}

// simulateWork stands in for talking to a payment provider. It is the
// only suspension point in this handler.
func (h *Handler) simulateWork(ctx context.Context) {
	d := h.workMin
	if h.workMax > h.workMin {
		d += time.Duration(rand.Int63n(int64(h.workMax - h.workMin)))
	}
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
