package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdminRoutesRequireAdmin(t *testing.T) {
	srv := setupTestServer(t)
	srv.createUser(t, "Desk", "desk@example.com", "desk-password", model.RoleReceptionist)
	token := srv.login(t, "desk@example.com", "desk-password")

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/user", token: token})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodPost, path: "/user", token: token, body: map[string]interface{}{
		"name": "X", "email": "x@example.com", "password": "password123", "role_id": 1,
	}})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateUser(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	body := map[string]interface{}{"name": "Tom", "email": "tom@example.com", "password": "password123", "role_id": model.RoleTherapist}

	var created model.User
	srv.mustDo(t, requestParams{method: http.MethodPost, path: "/user", token: token, body: body}, http.StatusCreated, &created)
	assert.Equal(t, model.RoleTherapist, created.RoleID)
	srv.login(t, "tom@example.com", "password123")

	rr, _ := srv.do(t, requestParams{method: http.MethodPost, path: "/user", token: token, body: body})
	assert.Equal(t, http.StatusConflict, rr.Code)

	body["email"] = "other@example.com"
	body["role_id"] = 9
	rr, _ = srv.do(t, requestParams{method: http.MethodPost, path: "/user", token: token, body: body})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListUsers(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	for i := 0; i < 3; i++ {
		srv.createUser(t, fmt.Sprintf("Staff %d", i), fmt.Sprintf("staff%d@example.com", i), "password123", model.RoleReceptionist)
	}

	var page struct {
		Users      []model.User `json:"users"`
		Total      int64        `json:"total"`
		HasMore    bool         `json:"has_more"`
		NextCursor *uint        `json:"next_cursor"`
	}
	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/user?limit=2", token: token}, http.StatusOK, &page)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Users, 2)
	require.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: fmt.Sprintf("/user?limit=2&cursor=%d", *page.NextCursor), token: token}, http.StatusOK, &page)
	assert.Len(t, page.Users, 2)
	assert.False(t, page.HasMore)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/user?keyword=STAFF1", token: token}, http.StatusOK, &page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "staff1@example.com", page.Users[0].Email)
}

func TestUpdateUserByID_RoleChangeLogsUserOut(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	user := srv.createUser(t, "Nurse", "nurse@example.com", "password123", model.RoleReceptionist)
	userToken := srv.login(t, "nurse@example.com", "password123")

	var updated model.User
	srv.mustDo(t, requestParams{
		method: http.MethodPatch, path: fmt.Sprintf("/user/%d", user.ID), token: token,
		body: map[string]interface{}{"role_id": model.RoleTherapist},
	}, http.StatusOK, &updated)
	assert.Equal(t, model.RoleTherapist, updated.RoleID)

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/patient", token: userToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodPatch, path: fmt.Sprintf("/user/%d", user.ID), token: token, body: map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodPatch, path: "/user/999", token: token, body: map[string]interface{}{"name": "x"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateUser_Self(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	srv.createUser(t, "Taken", "taken@example.com", "password123", model.RoleReceptionist)

	var updated model.User
	srv.mustDo(t, requestParams{method: http.MethodPatch, path: "/user", token: token, body: map[string]string{"name": "Head Admin"}}, http.StatusOK, &updated)
	assert.Equal(t, "Head Admin", updated.Name)

	rr, _ := srv.do(t, requestParams{method: http.MethodPatch, path: "/user", token: token, body: map[string]string{"email": "taken@example.com"}})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodPatch, path: "/user", token: token, body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// A password change revokes every session, including the current one.
	srv.mustDo(t, requestParams{method: http.MethodPatch, path: "/user", token: token, body: map[string]string{"password": "brand-new-password"}}, http.StatusOK, nil)
	rr, _ = srv.do(t, requestParams{method: http.MethodGet, path: "/patient", token: token})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	srv.login(t, "admin@example.com", "brand-new-password")
}

func TestDeleteUser(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	user := srv.createUser(t, "Leaving", "leaving@example.com", "password123", model.RoleReceptionist)
	userToken := srv.login(t, "leaving@example.com", "password123")

	srv.mustDo(t, requestParams{method: http.MethodDelete, path: fmt.Sprintf("/user/%d", user.ID), token: token}, http.StatusOK, nil)

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/patient", token: userToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodGet, path: fmt.Sprintf("/user/%d", user.ID), token: token})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var admin model.User
	require.NoError(t, srv.db.Where("email = ?", "admin@example.com").First(&admin).Error)
	rr, _ = srv.do(t, requestParams{method: http.MethodDelete, path: fmt.Sprintf("/user/%d", admin.ID), token: token})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = srv.do(t, requestParams{method: http.MethodDelete, path: "/user/abc", token: token})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUserInfo(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	user := srv.createUser(t, "Info", "info@example.com", "password123", model.RoleTherapist)

	var got model.User
	srv.mustDo(t, requestParams{method: http.MethodGet, path: fmt.Sprintf("/user/%d", user.ID), token: token}, http.StatusOK, &got)
	assert.Equal(t, "info@example.com", got.Email)
	assert.Empty(t, got.Password)
}
