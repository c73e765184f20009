package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/api/handlers"
	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/gatekeeper"
	"github.com/reelhaven/reelhaven/internal/models"
	"github.com/reelhaven/reelhaven/internal/services"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AllowlistEntry{},
		&models.AccessRequest{},
		&models.AccessLog{},
		&models.AdminAccessLog{},
	))
	return db
}

// setupAccessRouter wires the escape routes behind the real gate middleware
// and the admin routes behind a stub identity, mirroring production ordering.
func setupAccessRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := handlers.NewAccessRequestHandler(services.NewAccessRequestService(db), services.NewNotifierService(""))

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(gatekeeper.New(db).Middleware())
	api.POST("/access-requests", handler.Submit)
	api.GET("/access-requests/status", handler.Status)

	admin := api.Group("/admin")
	admin.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint(1))
		c.Set(middleware.IsAdminKey, true)
	})
	admin.GET("/access-requests/pending", handler.ListPending)
	admin.POST("/access-requests/:id/approve", handler.Approve)
	admin.POST("/access-requests/:id/reject", handler.Reject)

	return router
}

func postJSON(router *gin.Engine, path, ip string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", ip)
	router.ServeHTTP(w, req)
	return w
}

func TestAccessRequestHandler_SubmitFlow(t *testing.T) {
	db := setupHandlerDB(t)
	router := setupAccessRouter(t, db)

	t.Run("blocked client can submit through the gate", func(t *testing.T) {
		w := postJSON(router, "/api/v1/access-requests", "203.0.113.9", gin.H{
			"name":   "Eve",
			"reason": "Family member",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		// Server-resolved address, not anything from the body
		assert.Equal(t, "203.0.113.9", body["ip_address"])
	})

	t.Run("duplicate pending request conflicts", func(t *testing.T) {
		w := postJSON(router, "/api/v1/access-requests", "203.0.113.9", gin.H{"name": "Eve"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("status reflects the pending request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/access-requests/status", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["has_pending_request"])
	})

	t.Run("allowlisted address cannot submit", func(t *testing.T) {
		_, err := services.NewAllowlistService(db).Add("198.51.100.5", "", nil)
		assert.NoError(t, err)

		w := postJSON(router, "/api/v1/access-requests", "198.51.100.5", gin.H{})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAccessRequestHandler_AdminFlow(t *testing.T) {
	db := setupHandlerDB(t)
	router := setupAccessRouter(t, db)

	// Admin's own address needs to be allowlisted to reach admin routes.
	allowlist := services.NewAllowlistService(db)
	_, err := allowlist.Add("192.0.2.1", "Admin", nil)
	assert.NoError(t, err)

	submitted := postJSON(router, "/api/v1/access-requests", "203.0.113.30", gin.H{"name": "Frank"})
	assert.Equal(t, http.StatusCreated, submitted.Code)

	var pending []services.RequestRow
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/admin/access-requests/pending", nil)
	req.Header.Set("X-Forwarded-For", "192.0.2.1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Len(t, pending, 1)

	t.Run("approve promotes the address", func(t *testing.T) {
		w := postJSON(router, "/api/v1/admin/access-requests/1/approve", "192.0.2.1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		allowed, err := allowlist.IsAllowed("203.0.113.30")
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("second approve is a 404", func(t *testing.T) {
		w := postJSON(router, "/api/v1/admin/access-requests/1/approve", "192.0.2.1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id is a 400", func(t *testing.T) {
		w := postJSON(router, "/api/v1/admin/access-requests/abc/reject", "192.0.2.1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
