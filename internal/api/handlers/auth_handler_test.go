package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/api/handlers"
	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/config"
	"github.com/reelhaven/reelhaven/internal/services"
)

func setupAuthHandlerRouter(t *testing.T, db *gorm.DB) (*services.AuthService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(db, config.Config{JWTSecret: "test-secret"})
	handler := handlers.NewAuthHandler(authService, services.NewAuditService(db), false)

	router := gin.New()
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/logout", handler.Logout)

	me := router.Group("/", middleware.Auth(authService))
	me.GET("/auth/me", handler.Me)

	return authService, router
}

func TestAuthHandler_LoginSetsSessionCookie(t *testing.T) {
	db := setupHandlerDB(t)
	auth, router := setupAuthHandlerRouter(t, db)

	_, err := auth.Register("grace", "password1")
	assert.NoError(t, err)

	w := postJSON(router, "/auth/login", "127.0.0.1", gin.H{
		"username": "grace",
		"password": "password1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sessionCookie = c
		}
	}
	assert.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])

	t.Run("cookie authenticates /auth/me", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "grace")
		// The password hash never leaves the server
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	db := setupHandlerDB(t)
	auth, router := setupAuthHandlerRouter(t, db)

	_, err := auth.Register("henry", "password1")
	assert.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(router, "/auth/login", "127.0.0.1", gin.H{
			"username": "henry",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(router, "/auth/login", "127.0.0.1", gin.H{"username": "henry"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	db := setupHandlerDB(t)
	_, router := setupAuthHandlerRouter(t, db)

	t.Run("creates viewer account", func(t *testing.T) {
		w := postJSON(router, "/auth/register", "127.0.0.1", gin.H{
			"username": "newuser",
			"password": "password1",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["is_admin"])
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := postJSON(router, "/auth/register", "127.0.0.1", gin.H{
			"username": "newuser",
			"password": "password1",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_LogoutClearsCookie(t *testing.T) {
	db := setupHandlerDB(t)
	_, router := setupAuthHandlerRouter(t, db)

	w := postJSON(router, "/auth/logout", "127.0.0.1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cleared = c
		}
	}
	assert.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
}
