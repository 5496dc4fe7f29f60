package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestHandler(t *testing.T, declineRate float64) *Handler {
	t.Helper()
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return NewHandler(metrics, declineRate, 0, 0)
}

func postPayment(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ProcessPayment(rec, req)
	return rec
}

func TestProcessPayment_Approved(t *testing.T) {
	h := newTestHandler(t, 0)

	rec := postPayment(h, `{"orderId":"abc123","amount":42.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string  `json:"status"`
		PaymentID string  `json:"paymentId"`
		OrderID   string  `json:"orderId"`
		Amount    float64 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Status)
	assert.NotEmpty(t, resp.PaymentID)
	assert.Equal(t, "abc123", resp.OrderID)
	assert.Equal(t, 42.5, resp.Amount)
}

func TestProcessPayment_Declined(t *testing.T) {
	h := newTestHandler(t, 1)

	rec := postPayment(h, `{"orderId":"abc123","amount":42.5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Status  string `json:"status"`
		OrderID string `json:"orderId"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "declined", resp.Status)
	assert.Equal(t, "abc123", resp.OrderID)
	assert.Equal(t, "Card declined", resp.Error)
}

func TestProcessPayment_InvalidBody(t *testing.T) {
	h := newTestHandler(t, 0)

	rec := postPayment(h, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid JSON body", resp["error"])
}

func TestProcessPayment_RejectsBadFields(t *testing.T) {
	h := newTestHandler(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"missing orderId", `{"amount":42.5}`},
		{"zero amount", `{"orderId":"abc123","amount":0}`},
		{"negative amount", `{"orderId":"abc123","amount":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postPayment(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
