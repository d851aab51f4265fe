package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
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

func newPostApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db))
	database.DB = db

	require.NoError(t, db.Create(&models.User{
		ID: "alice", Email: "alice@example.com", FullName: "User alice", Username: "alice",
	}).Error)

	app := fiber.New()
	routes.PostRoutes(app)
	return app
}

func postMultipart(t *testing.T, app *fiber.App, fields map[string]string, imageCount int) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for i := 0; i < imageCount; i++ {
		part, err := writer.CreateFormFile("images", fmt.Sprintf("photo-%d.png", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("not-a-real-png"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestAddPostTextOnly(t *testing.T) {
	app := newPostApp(t)

	resp, body := postMultipart(t, app, map[string]string{"content": "hello world"}, 0)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	var post models.Post
	require.NoError(t, database.DB.First(&post, "user_id = ?", "alice").Error)
	assert.Equal(t, "hello world", post.Content)
	assert.Equal(t, models.PostTypeText, post.PostType)
}

func TestAddPostRejectsTooManyImages(t *testing.T) {
	app := newPostApp(t)

	resp, body := postMultipart(t, app, map[string]string{"content": "spam"}, 5)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	// Nothing was stored.
	var count int64
	database.DB.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestAddPostRejectsEmptyPost(t *testing.T) {
	app := newPostApp(t)

	resp, body := postMultipart(t, app, nil, 0)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}
