// Package order implements the middle service of the chain: it creates an
// order, simulates processing, and charges it through the payment service.
package order

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Vijay-papanaboina/LGTM-stack/client"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/httpx"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

type createRequest struct {
	Total float64 `json:"total"`
}

type paymentRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

type paymentResult struct {
	Status    string  `json:"status"`
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

type completedResponse struct {
	Status  string        `json:"status"`
	OrderID string        `json:"orderId"`
	Total   float64       `json:"total"`
	Payment paymentResult `json:"payment"`
}

type failedResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

// Handler serves the order endpoints.
type Handler struct {
	payments *client.Client
	metrics  *Metrics
	workMin  time.Duration
	workMax  time.Duration
}

// NewHandler creates an order handler calling the given payment client.
func NewHandler(payments *client.Client, metrics *Metrics, workMin, workMax time.Duration) *Handler {
	return &Handler{
		payments: payments,
		metrics:  metrics,
		workMin:  workMin,
		workMax:  workMax,
	}
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.LoggerFromContext(ctx)
	start := time.Now()

	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		log.Warn(ctx, "invalid order request body", observe.Field{Key: "error", Value: err.Error()})
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Total <= 0 {
		log.Warn(ctx, "rejected order request", observe.Field{Key: "total", Value: req.Total})
		httpx.Error(w, http.StatusBadRequest, "total must be greater than zero")
		return
	}

	orderID := uuid.NewString()
	log.Info(ctx, "order received",
		observe.Field{Key: "order_id", Value: orderID},
		observe.Field{Key: "total", Value: req.Total},
	)

	h.simulateWork(ctx)

	var payment paymentResult
	err := h.payments.PostJSON(ctx, "/payments", paymentRequest{OrderID: orderID, Amount: req.Total}, &payment)

	var derr *client.Error
	switch {
	case errors.As(err, &derr):
		if derr.Status == http.StatusBadRequest {
			// Declined payment: a normal business outcome.
			text := derr.ErrorText()
			h.metrics.RecordOrder(ctx, "declined", time.Since(start))
			log.Warn(ctx, "payment declined",
				observe.Field{Key: "order_id", Value: orderID},
				observe.Field{Key: "error", Value: text},
			)
			httpx.WriteJSON(w, derr.Status, failedResponse{
				Status:  "failed",
				OrderID: orderID,
				Error:   text,
			})
			return
		}
		// Any other structured failure passes through unchanged.
		h.metrics.RecordOrder(ctx, "failed", time.Since(start))
		log.Error(ctx, "payment call failed",
			observe.Field{Key: "order_id", Value: orderID},
			observe.Field{Key: "status", Value: derr.Status},
		)
		httpx.WriteRaw(w, derr.Status, derr.Body)
		return

	case err != nil:
		h.metrics.RecordOrder(ctx, "failed", time.Since(start))
		log.Error(ctx, "payment service unavailable",
			observe.Field{Key: "order_id", Value: orderID},
			observe.Field{Key: "error", Value: err.Error()},
		)
		httpx.Error(w, http.StatusBadGateway, "payment service unavailable: "+err.Error())
		return
	}

	h.metrics.RecordOrder(ctx, "completed", time.Since(start))
	log.Info(ctx, "order completed",
		observe.Field{Key: "order_id", Value: orderID},
		observe.Field{Key: "payment_id", Value: payment.PaymentID},
	)
	httpx.WriteJSON(w, http.StatusOK, completedResponse{
		Status:  "completed",
		OrderID: orderID,
		Total:   req.Total,
		Payment: payment,
	})
}

// simulateWork stands in for inventory and pricing checks. It is the only
// suspension point before the downstream call.
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
