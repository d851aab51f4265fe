package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/models"
	"github.com/addahq/adda-backend/realtime"
	"github.com/addahq/adda-backend/routes"
	"github.com/addahq/adda-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	service  *services.MessageService
	registry *realtime.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db))

	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&models.User{
			ID:       id,
			Email:    id + "@example.com",
			FullName: "User " + id,
			Username: id,
		}).Error)
	}

	registry := realtime.NewRegistry()
	service := services.NewMessageService(db, registry)

	app := fiber.New()
	routes.MessageRoutes(app, handlers.NewMessageHandler(service, registry, nil))

	return &testEnv{app: app, db: db, service: service, registry: registry}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, env *testEnv, method, path, userID string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func sendMultipart(t *testing.T, env *testEnv, userID string, fields map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/send", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSendMessageEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := sendMultipart(t, env, "alice", map[string]string{
		"to_user_id": "bob",
		"text":       "hello",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	message := body["message"].(map[string]interface{})
	assert.Equal(t, "alice", message["from_user_id"])
	assert.Equal(t, "bob", message["to_user_id"])
	assert.Equal(t, "hello", message["text"])
	assert.Equal(t, models.MessageTypeText, message["message_type"])
}

func TestSendMessageRejectsEmptyBody(t *testing.T) {
	env := newTestEnv(t)

	resp, body := sendMultipart(t, env, "alice", map[string]string{
		"to_user_id": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestSendMessageRequiresRecipient(t *testing.T) {
	env := newTestEnv(t)

	resp, body := sendMultipart(t, env, "alice", map[string]string{
		"text": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestSendMessageRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/send", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetChatMessagesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Send("bob", "alice", "one", "", nil)
	require.NoError(t, err)
	_, err = env.service.Send("alice", "bob", "two", "", nil)
	require.NoError(t, err)

	resp, body := doJSON(t, env, http.MethodPost, "/api/v1/messages/chat", "alice",
		map[string]string{"to_user_id": "bob"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "one", first["text"])

	// Fetching the thread marked bob's messages as read.
	var unread int64
	env.db.Model(&models.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND is_read = ?", "bob", "alice", false).
		Count(&unread)
	assert.EqualValues(t, 0, unread)
}

func TestRecentMessagesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Send("bob", "alice", "ping", "", nil)
	require.NoError(t, err)
	_, err = env.service.Send("carol", "alice", "pong", "", nil)
	require.NoError(t, err)

	resp, body := doJSON(t, env, http.MethodGet, "/api/v1/messages/recent", "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conversations := body["conversations"].([]interface{})
	require.Len(t, conversations, 2)
	newest := conversations[0].(map[string]interface{})
	assert.Equal(t, "carol", newest["counterpart_id"])
	assert.EqualValues(t, 1, newest["unread_count"])
}

func TestDeleteMessageEndpoint(t *testing.T) {
	env := newTestEnv(t)

	m, err := env.service.Send("bob", "alice", "hi", "", nil)
	require.NoError(t, err)

	resp, body := doJSON(t, env, http.MethodDelete, "/api/v1/messages/"+m.ID.String(), "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// Not a participant: forbidden.
	resp, _ = doJSON(t, env, http.MethodDelete, "/api/v1/messages/"+m.ID.String(), "carol", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Garbage id: bad request.
	resp, _ = doJSON(t, env, http.MethodDelete, "/api/v1/messages/not-a-uuid", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteConversationEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Send("alice", "bob", "one", "", nil)
	require.NoError(t, err)
	_, err = env.service.Send("bob", "alice", "two", "", nil)
	require.NoError(t, err)

	resp, body := doJSON(t, env, http.MethodDelete, "/api/v1/messages/conversation/bob", "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	var count int64
	env.db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
