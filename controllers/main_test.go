package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crmapi/config"
	"crmapi/routes"
)

const testSecret = "test-secret"

// setupTestApp wires the full route surface against a fresh in-memory
// SQLite database, one per test.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	cfg := &config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		RateLimitLogin: 1000,
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, logger)
	return app, db
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func register(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	return request(t, app, fiber.MethodPost, "/register", "", fiber.Map{
		"username": username,
		"password": password,
	})
}

func login(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	return request(t, app, fiber.MethodPost, "/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
}

// newRawRequest hits the lead list with a verbatim Authorization header
func newRawRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", authHeader)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// registerAndLogin creates an account and returns a valid bearer token
func registerAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	resp := register(t, app, username, password)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = login(t, app, username, password)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, resp, &auth)
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken
}
