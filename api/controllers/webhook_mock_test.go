package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alonsohii/Suscribe/internal/webhooks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(webhooks.Payload{
		Message:        "Payment successful for user 7",
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: uuid.New(),
	})
	require.NoError(t, err)
	return body
}

func TestWebhookMockReceiveRecords(t *testing.T) {
	recorder := webhooks.NewRecorder(false)
	handler := WebhookMockReceive(recorder, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook-mock/receive", bytes.NewReader(webhookBody(t)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook received successfully")
	assert.Len(t, recorder.Received(), 1)
}

func TestWebhookMockReceiveSimulatedError(t *testing.T) {
	recorder := webhooks.NewRecorder(true)
	handler := WebhookMockReceive(recorder, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook-mock/receive", bytes.NewReader(webhookBody(t)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Simulated webhook failure")
	assert.Empty(t, recorder.Received())
}

func TestWebhookMockErrorStatusReportsFlag(t *testing.T) {
	recorder := webhooks.NewRecorder(true)
	handler := WebhookMockErrorStatus(recorder, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook-mock/error-status", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"simulateError":true}`, rec.Body.String())
}

func TestWebhookMockSetErrorStatusToggle(t *testing.T) {
	recorder := webhooks.NewRecorder(false)
	handler := WebhookMockSetErrorStatus(recorder, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook-mock/error-status", bytes.NewReader([]byte(`{"simulateError":true}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, recorder.SimulateError())
}

func TestWebhookMockClear(t *testing.T) {
	recorder := webhooks.NewRecorder(false)
	recorder.Record(webhooks.Payload{Message: "hello", IdempotencyKey: uuid.New()})
	handler := WebhookMockClear(recorder, nil)

	req := httptest.NewRequest(http.MethodDelete, "/webhook-mock/clear", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, recorder.Received())
}

func TestWebhookMockReceivedEmptyList(t *testing.T) {
	recorder := webhooks.NewRecorder(false)
	handler := WebhookMockReceived(recorder, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook-mock/received", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
