package middleware

import (
	"net/http"
	"time"

	"github.com/cartloom/cartloom-backend/api/responses"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	redisclient "github.com/cartloom/cartloom-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// Idempotency reserves the Idempotency-Key header value for the given
// scope before the handler runs. A reused key is rejected outright; the
// first request wins even if it is still in flight.
func Idempotency(store redisclient.IdempotencyStore, scope string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := store.SetNX(r.Context(), store.IdempotencyKey(scope, key), "1", idempotencyTTL)
			if err != nil {
				responses.WriteError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving idempotency key"))
				return
			}
			if !acquired {
				responses.WriteError(w, r, logg, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key already used").
					WithDetails(map[string]string{"scope": scope}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
