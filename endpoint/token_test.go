package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/ariebrainware/clinic-therapy/endpoint"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	srv, token := setupServerWithAdmin(t)

	var info endpoint.TokenInfo
	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/token/validate", token: token}, http.StatusOK, &info)
	assert.Equal(t, "Admin", info.Role)
	assert.Equal(t, model.RoleAdmin, info.RoleID)
	assert.Equal(t, "admin@example.com", info.Email)

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/token/validate"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodGet, path: "/token/validate", token: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshToken_RotatesSession(t *testing.T) {
	srv, token := setupServerWithAdmin(t)

	var data endpoint.LoginResponse
	srv.mustDo(t, requestParams{method: http.MethodPost, path: "/token/refresh", token: token}, http.StatusOK, &data)
	require.NotEmpty(t, data.Token)
	assert.NotEqual(t, token, data.Token)
	assert.Equal(t, "Admin", data.Role)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/patient", token: data.Token}, http.StatusOK, nil)

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/patient", token: token})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
