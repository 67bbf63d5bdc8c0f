package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/pkg/config"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

const guestTokenBytes = 32

// CartIdentity resolves the cart id for the request: authenticated
// callers use their user id, everyone else gets an opaque random token
// pinned in an httpOnly cookie. The token carries no meaning beyond
// being a cart key, so nothing about the user can be derived from it.
// Must run after OptionalAuth.
func CartIdentity(cfg config.GuestCartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := UserIDFromContext(r.Context()); ok {
				ctx := WithCartID(r.Context(), userID.String())
				ctx = logg.WithCartID(ctx, userID.String())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				generated, err := newGuestToken()
				if err != nil {
					responses.WriteError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing guest cart token"))
					return
				}
				token = generated
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.CookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithCartID(r.Context(), token)
			ctx = logg.WithCartID(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newGuestToken() (string, error) {
	buf := make([]byte, guestTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
