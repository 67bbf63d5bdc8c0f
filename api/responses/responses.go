package responses

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

// WriteSuccess writes the standard {data: ...} envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError maps an error to the {error: {code, message, details}}
// envelope. Coded errors choose their own status; anything else is a
// generic 500 so internals never leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		appErr = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(appErr.Code())

	if meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(r.Context(), "request failed", err)
	}

	body := types.APIError{
		Code:    string(appErr.Code()),
		Message: appErr.Message(),
	}
	if body.Message == "" {
		body.Message = meta.PublicMessage
	}
	if meta.DetailsAllowed {
		body.Details = appErr.Details()
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		// mask internal messages
		body.Message = meta.PublicMessage
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: body})
}
