package controllers

import (
	"net/http"

	"github.com/alonsohii/Suscribe/api/responses"
	"github.com/alonsohii/Suscribe/api/validators"
	"github.com/alonsohii/Suscribe/internal/users"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
)

// RegisterUser creates a user account, or reports the existing one when the
// email is already registered.
func RegisterUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var req users.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, resp)
	}
}
