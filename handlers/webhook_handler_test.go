package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/models"
	"github.com/addahq/adda-backend/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const webhookSecret = "hook-secret"

func newWebhookApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("WEBHOOK_SECRET", webhookSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db))
	database.DB = db

	app := fiber.New()
	routes.WebhookRoutes(app)
	return app
}

func postEvent(t *testing.T, app *fiber.App, secret string, event map[string]interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestIdentityWebhookCreatesUser(t *testing.T) {
	app := newWebhookApp(t)

	resp := postEvent(t, app, webhookSecret, map[string]interface{}{
		"type": "user.created",
		"data": map[string]interface{}{
			"id":         "user_123",
			"email":      "jane@example.com",
			"first_name": "Jane",
			"last_name":  "Doe",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", "user_123").Error)
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, models.DefaultBio, user.Bio)
}

func TestIdentityWebhookResolvesUsernameCollision(t *testing.T) {
	app := newWebhookApp(t)

	require.NoError(t, database.DB.Create(&models.User{
		ID: "existing", Email: "jane@other.com", FullName: "Other Jane", Username: "jane",
	}).Error)

	resp := postEvent(t, app, webhookSecret, map[string]interface{}{
		"type": "user.created",
		"data": map[string]interface{}{
			"id":    "user_456",
			"email": "jane@example.com",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", "user_456").Error)
	assert.NotEqual(t, "jane", user.Username)
	assert.Contains(t, user.Username, "jane")
}

func TestIdentityWebhookRejectsBadSecret(t *testing.T) {
	app := newWebhookApp(t)

	resp := postEvent(t, app, "wrong", map[string]interface{}{
		"type": "user.created",
		"data": map[string]interface{}{"id": "user_789"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postEvent(t, app, "", map[string]interface{}{
		"type": "user.created",
		"data": map[string]interface{}{"id": "user_789"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIdentityWebhookDeletesUser(t *testing.T) {
	app := newWebhookApp(t)

	require.NoError(t, database.DB.Create(&models.User{
		ID: "user_del", Email: "d@example.com", FullName: "Doomed", Username: "doomed",
	}).Error)

	resp := postEvent(t, app, webhookSecret, map[string]interface{}{
		"type": "user.deleted",
		"data": map[string]interface{}{"id": "user_del"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	err := database.DB.First(&models.User{}, "id = ?", "user_del").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
