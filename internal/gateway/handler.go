// Package gateway implements the entry point of the chain: it validates
// external order requests and forwards them to the order service,
// returning the downstream response unchanged.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Vijay-papanaboina/LGTM-stack/client"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/httpx"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

type createOrderRequest struct {
	Total float64 `json:"total" validate:"required,gt=0"`
}

// Handler serves the gateway endpoints.
type Handler struct {
	orders   *client.Client
	validate *validator.Validate
}

// NewHandler creates a gateway handler forwarding to the given order client.
func NewHandler(orders *client.Client) *Handler {
	return &Handler{
		orders:   orders,
		validate: validator.New(),
	}
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.LoggerFromContext(ctx)

	var req createOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		log.Warn(ctx, "invalid order request body", observe.Field{Key: "error", Value: err.Error()})
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn(ctx, "rejected order request", observe.Field{Key: "total", Value: req.Total})
		httpx.Error(w, http.StatusBadRequest, "total must be greater than zero")
		return
	}

	var out json.RawMessage
	err := h.orders.PostJSON(ctx, "/orders", req, &out)

	var derr *client.Error
	switch {
	case errors.As(err, &derr):
		// Downstream error semantics pass through unchanged.
		log.Warn(ctx, "order request failed downstream",
			observe.Field{Key: "status", Value: derr.Status},
		)
		httpx.WriteRaw(w, derr.Status, derr.Body)

	case err != nil:
		log.Error(ctx, "order service unavailable", observe.Field{Key: "error", Value: err.Error()})
		httpx.Error(w, http.StatusBadGateway, "order service unavailable: "+err.Error())

	default:
		httpx.WriteRaw(w, http.StatusOK, out)
	}
}
