package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSignAndParse(t *testing.T) {
	token, err := Sign("abc", "portal", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := Parse(token, "secret", "portal")
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.SessionID)

	_, err = Parse(token, "other-secret", "portal")
	assert.Error(t, err)
	_, err = Parse(token, "secret", "someone-else")
	assert.Error(t, err)
	_, err = Parse("not-a-token", "secret", "")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := Sign("abc", "portal", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = Parse(token, "secret", "portal")
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	admin := Identity{ID: 1, Role: users.RoleAdmin}
	faculty := Identity{ID: 2, Role: users.RoleFaculty}

	assert.ErrorIs(t, Authorize(Identity{}, users.RoleAdmin), ErrAuthenticationRequired)
	assert.ErrorIs(t, Authorize(Identity{}), ErrAuthenticationRequired)
	assert.NoError(t, Authorize(admin, users.RoleAdmin))
	assert.NoError(t, Authorize(faculty))
	assert.ErrorIs(t, Authorize(faculty, users.RoleAdmin), ErrAccessDenied)
	assert.NoError(t, Authorize(faculty, users.RoleAdmin, users.RoleFaculty))
}

func TestHome(t *testing.T) {
	assert.Equal(t, "/login", Identity{}.Home())
	assert.Equal(t, "/faculty", Identity{ID: 3, Role: users.RoleFaculty}.Home())
}

type stubResolver map[string]Identity

func (s stubResolver) Resolve(_ context.Context, token string) (Identity, error) {
	id, ok := s[token]
	if !ok {
		return Identity{}, errors.New("no session")
	}
	return id, nil
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(Gate(stubResolver{
		"admin-token":   {ID: 1, Role: users.RoleAdmin, Email: "a@school.com"},
		"student-token": {ID: 3, Role: users.RoleStudent},
	}, "portal_session"))
	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"who": IdentityFrom(c).Email, "ctx": FromContext(c.Request.Context()).ID})
	}
	r.GET("/admin", RequireRole(users.RoleAdmin), ok)
	r.POST("/api/add-user", RequireRole(users.RoleAdmin), ok)
	r.GET("/me", RequireAuth(), ok)
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/admin", "bogus")
	assert.Equal(t, http.StatusFound, w.Code)

	w = do(r, http.MethodPost, "/api/add-user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authentication required"}`, w.Body.String())

	w = do(r, http.MethodGet, "/admin", "student-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access Denied", w.Body.String())

	w = do(r, http.MethodPost, "/api/add-user", "student-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Access Denied"}`, w.Body.String())

	w = do(r, http.MethodGet, "/admin", "admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"who":"a@school.com","ctx":1}`, w.Body.String())
}

func TestRequireAuthAcceptsAnyRole(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "student-token").Code)
	assert.Equal(t, http.StatusFound, do(r, http.MethodGet, "/me", "").Code)
}
