package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthenticator records calls and returns canned results.
type fakeAuthenticator struct {
	user     *models.User
	token    *auth.TokenResponse
	err      error
	lastRole string
}

func (f *fakeAuthenticator) Register(email, _, roleName string) (*models.User, error) {
	f.lastRole = roleName
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.Email = email
	return &u, nil
}

func (f *fakeAuthenticator) Login(_, _ string) (*auth.TokenResponse, error) {
	return f.token, f.err
}

func (f *fakeAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if f.user != nil {
			c.Set(auth.UserContextKey, f.user)
		}
		c.Next()
	}
}

func (f *fakeAuthenticator) GetUserFromContext(c *gin.Context) (*models.User, error) {
	return auth.UserFromContext(c)
}

func adminAccount() *models.User {
	return &models.User{
		ID:       7,
		Email:    "root@example.com",
		IsActive: true,
		Role: &models.Role{Name: rbac.RoleAdmin, Permissions: []models.Permission{
			{Name: rbac.PermUsersRead},
			{Name: rbac.PermPromptsCreate},
		}},
	}
}

func authRouter(a auth.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(a)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", a.Middleware(), h.Me)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Me(t *testing.T) {
	w := serve(authRouter(&fakeAuthenticator{user: adminAccount()}), http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.ID)
	require.NotNil(t, resp.Role)
	assert.Equal(t, rbac.RoleAdmin, *resp.Role)
	assert.Equal(t, []string{rbac.PermUsersRead, rbac.PermPromptsCreate}, resp.Permissions)
}

func TestAuthHandler_MeWithoutAccount(t *testing.T) {
	w := serve(authRouter(&fakeAuthenticator{}), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, w.Body.String())
}

func TestAuthHandler_RegisterWithoutRole(t *testing.T) {
	fake := &fakeAuthenticator{user: &models.User{ID: 3, IsActive: true}}
	w := serve(authRouter(fake), http.MethodPost, "/auth/register", `{"email":"new@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, fake.lastRole)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp["email"])
	assert.Nil(t, resp["role"], "accounts without a role serialize role as null")
	assert.Equal(t, []interface{}{}, resp["permissions"])
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	r := authRouter(&fakeAuthenticator{err: auth.ErrInvalidCredentials})

	w := serve(r, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = serve(r, http.MethodPost, "/auth/login", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	token := &auth.TokenResponse{AccessToken: "abc", TokenType: auth.TokenType}
	w := serve(authRouter(&fakeAuthenticator{token: token}), http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"abc","token_type":"bearer"}`, w.Body.String())
}
