package onboarding

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *harness) {
	t.Helper()
	h := newHarness(t, false)
	handler := NewHandler(h.svc)

	app := fiber.New()
	app.Post("/sessions", handler.Start)
	app.Get("/sessions/:sessionId", handler.Get)
	app.Delete("/sessions/:sessionId", handler.Abandon)
	app.Post("/sessions/:sessionId/back", handler.Back)
	app.Post("/sessions/:sessionId/resend-code", handler.ResendCode)
	app.Post("/sessions/:sessionId/steps/:step", handler.Submit)
	return app, h
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, View) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var view View
	if resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	}
	return resp, view
}

func TestHandlerFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, view := doJSON(t, app, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, StepSplash, view.Step)
	base := "/sessions/" + view.SessionID

	resp, view = doJSON(t, app, http.MethodPost, base+"/steps/splash", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StepOnboardingIntro, view.Step)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/steps/kyc", `{"action":"next"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/steps/onboarding-intro", `{"action":"warp"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/steps/nowhere", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, view = doJSON(t, app, http.MethodPost, base+"/back", `{"step":"onboarding-intro"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StepSplash, view.Step)

	doJSON(t, app, http.MethodPost, base+"/steps/splash", "")
	doJSON(t, app, http.MethodPost, base+"/steps/onboarding-intro", `{"action":"next"}`)
	resp, view = doJSON(t, app, http.MethodPost, base+"/steps/create-account", `{"action":"google"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StepGoogleAuth, view.Step)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/steps/google-auth", `{"payload":{"email":"  "}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/resend-code", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerPhoneVerify(t *testing.T) {
	app, h := newTestApp(t)
	id := h.toPhoneVerify(t)
	base := "/sessions/" + id

	resp, view := doJSON(t, app, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StepPhoneVerify, view.Step)
	assert.Equal(t, []Action{ActionNext, ActionBack}, view.Actions)

	code := h.code(t)
	digits, _ := json.Marshal(strings.Split(code, ""))
	resp, view = doJSON(t, app, http.MethodPost, base+"/steps/phone-verify", `{"payload":{"digits":`+string(digits)+`}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StepPersonalInfo, view.Step)
}
