package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cartloom/cartloom-backend/api/responses"
	pkgauth "github.com/cartloom/cartloom-backend/pkg/auth"
	"github.com/cartloom/cartloom-backend/pkg/auth/session"
	"github.com/cartloom/cartloom-backend/pkg/config"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// Authenticator validates bearer tokens and checks the backing Redis
// session so revoked tokens stop working before they expire.
type Authenticator struct {
	jwtCfg   config.JWTConfig
	sessions session.AccessSessionChecker
	logg     *logger.Logger
}

func NewAuthenticator(jwtCfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) *Authenticator {
	return &Authenticator{jwtCfg: jwtCfg, sessions: sessions, logg: logg}
}

// RequireAuth rejects requests without a valid, live session.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := a.authenticate(r)
		if err != nil {
			responses.WriteError(w, r, a.logg, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth seeds identity when a valid token is presented but lets
// anonymous requests through untouched. An invalid token is still an
// error; silently downgrading it to guest would mask client bugs.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := a.authenticate(r)
		if err != nil {
			responses.WriteError(w, r, a.logg, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group to callers whose role matches.
// It must run after RequireAuth.
func (a *Authenticator) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual, ok := RoleFromContext(r.Context())
			if !ok || actual != role {
				responses.WriteError(w, r, a.logg, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) authenticate(r *http.Request) (context.Context, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token")
	}

	claims, err := pkgauth.ParseAccessToken(a.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
	}

	live, err := a.sessions.HasSession(r.Context(), claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking session")
	}
	if !live {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked")
	}

	out := WithIdentity(r.Context(), claims.UserID, string(claims.Role), claims.ID)
	out = a.logg.WithUserID(out, claims.UserID.String())
	out = a.logg.WithActorRole(out, string(claims.Role))
	return out, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
