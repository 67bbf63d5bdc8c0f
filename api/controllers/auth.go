package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/api/validators"
	"github.com/cartloom/cartloom-backend/internal/auth"
	"github.com/cartloom/cartloom-backend/pkg/config"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// AuthController handles login and logout.
type AuthController struct {
	service auth.Service
	limiter middleware.RateLimiter
	rlCfg   config.AuthRateLimitConfig
	logg    *logger.Logger
}

func NewAuthController(service auth.Service, limiter middleware.RateLimiter, rlCfg config.AuthRateLimitConfig, logg *logger.Logger) *AuthController {
	return &AuthController{service: service, limiter: limiter, rlCfg: rlCfg, logg: logg}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	// per-email window on top of the router-level per-IP one
	scope := fmt.Sprintf("login:email:%s", strings.ToLower(strings.TrimSpace(input.Email)))
	allowed, _, err := c.limiter.FixedWindowAllow(r.Context(), scope, int64(c.rlCfg.LoginEmailLimit), c.rlCfg.LoginWindow)
	if err != nil {
		c.logg.Error(r.Context(), "login email rate limit check failed", err)
	} else if !allowed {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts for this account"))
		return
	}

	result, err := c.service.Login(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	accessID, _ := middleware.AccessIDFromContext(r.Context())
	if err := c.service.Logout(r.Context(), accessID); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "logged out"})
}
