package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.com","quantity":2}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", payload.Email)
	assert.Equal(t, 2, payload.Quantity)
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.com","quantity":1,"extra":true}`), &payload)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Contains(t, appErr.Message(), "unknown field")
}

func TestDecodeJSONBodyEmptyBody(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(""), &payload)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "request body required", appErr.Message())
}

func TestDecodeJSONBodyFieldErrorsReported(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"not-an-email","quantity":0}`), &payload)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)

	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "Email")
	assert.Contains(t, details, "Quantity")
}

func TestDecodeJSONBodyRejectsTrailingContent(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.com","quantity":1}{"email":"c@d.com"}`), &payload)
	require.Error(t, err)
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)
	assert.Equal(t, 3, ParseQueryInt(req, "page", 1))
	assert.Equal(t, 20, ParseQueryInt(req, "limit", 20))
	assert.Equal(t, 1, ParseQueryInt(req, "missing", 1))
}
