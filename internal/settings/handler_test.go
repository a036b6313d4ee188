package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangent-app/tangent/internal/i18n"
)

type alertBody struct {
	Error string      `json:"error"`
	Alert *i18n.Alert `json:"alert"`
}

func newTestApp(t *testing.T, f *fixture) *fiber.App {
	t.Helper()
	localizer, err := i18n.New("en")
	require.NoError(t, err)
	h := NewHandler(f.svc, localizer)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uid := c.Get("X-Test-User"); uid != "" {
			c.Locals("user_id", uid)
		}
		return c.Next()
	})
	app.Put("/settings/pin", h.ChangePIN)
	app.Put("/settings/address", h.ChangeAddress)
	app.Get("/settings/history", h.History)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, userID, body, lang string) (*http.Response, alertBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out alertBody
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHandlerChangePINAlerts(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(t, f)

	resp, _ := send(t, app, http.MethodPut, "/settings/pin", "", `{}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := send(t, app, http.MethodPut, "/settings/pin", f.user.ID, `{"current_pin":"1234","new_pin":"5678","confirm_pin":"5679"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, body.Alert)
	assert.Equal(t, "PINs Don't Match", body.Alert.Title)

	resp, body = send(t, app, http.MethodPut, "/settings/pin", f.user.ID, `{"current_pin":"9999","new_pin":"5678","confirm_pin":"5678"}`, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, body.Alert)
	assert.Equal(t, i18n.MsgIncorrectPIN, body.Alert.ID)

	resp, body = send(t, app, http.MethodPut, "/settings/pin", f.user.ID, `{"current_pin":"1234","new_pin":"5678","confirm_pin":"5678"}`, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body.Alert)
	assert.Equal(t, "Your PIN has been updated", body.Alert.Message)
}

func TestHandlerChangeAddressInvalidZIP(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(t, f)

	resp, body := send(t, app, http.MethodPut, "/settings/address", f.user.ID, `{"street":"2 Main St","city":"Austin","state":"TX","zip_code":"abcde"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, body.Alert)
	assert.Equal(t, i18n.MsgInvalidZIP, body.Alert.ID)

	resp, _ = send(t, app, http.MethodPut, "/settings/address", f.user.ID, `{"street":"2 Main St","city":"Austin","state":"TX","zip_code":"78701"}`, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodGet, "/settings/history?limit=5", f.user.ID, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
