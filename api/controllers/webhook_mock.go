package controllers

import (
	"net/http"

	"github.com/alonsohii/Suscribe/api/responses"
	"github.com/alonsohii/Suscribe/api/validators"
	"github.com/alonsohii/Suscribe/internal/webhooks"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
)

// WebhookMockReceive is the development stand-in for the downstream webhook
// endpoint. It records deliveries and can answer with a simulated failure to
// exercise the retry path.
func WebhookMockReceive(recorder *webhooks.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recorder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook recorder unavailable"))
			return
		}

		var payload webhooks.Payload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if recorder.SimulateError() {
			responses.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Simulated webhook failure",
			})
			return
		}

		recorder.Record(payload)
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Webhook received successfully",
		})
	}
}

// WebhookMockReceived lists every captured delivery.
func WebhookMockReceived(recorder *webhooks.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recorder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook recorder unavailable"))
			return
		}

		received := recorder.Received()
		if received == nil {
			received = []webhooks.ReceivedWebhook{}
		}
		responses.WriteJSON(w, http.StatusOK, received)
	}
}

// WebhookMockErrorStatus reports whether simulated failure mode is on.
func WebhookMockErrorStatus(recorder *webhooks.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recorder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook recorder unavailable"))
			return
		}

		responses.WriteJSON(w, http.StatusOK, map[string]bool{
			"simulateError": recorder.SimulateError(),
		})
	}
}

type errorStatusRequest struct {
	SimulateError bool `json:"simulateError"`
}

// WebhookMockSetErrorStatus toggles the simulated failure mode.
func WebhookMockSetErrorStatus(recorder *webhooks.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recorder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook recorder unavailable"))
			return
		}

		var req errorStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recorder.SetSimulateError(req.SimulateError)
		responses.WriteJSON(w, http.StatusOK, map[string]bool{
			"simulateError": req.SimulateError,
		})
	}
}

// WebhookMockClear drops every captured delivery.
func WebhookMockClear(recorder *webhooks.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recorder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook recorder unavailable"))
			return
		}

		recorder.Clear()
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Webhook history cleared",
		})
	}
}
