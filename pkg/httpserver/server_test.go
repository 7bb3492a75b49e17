package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]string) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)

	return resp, body
}

func assertCORS(t *testing.T, resp *http.Response) {
	t.Helper()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestErrorHandler(t *testing.T) {
	s := New(logger.New("error"))
	// fiber hands bodies over BodyLimit to the error handler as this error
	s.App.Get("/too-large", func(*fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})
	s.App.Get("/panic", func(*fiber.Ctx) error {
		panic("boom")
	})
	s.App.Get("/teapot", func(*fiber.Ctx) error {
		return fiber.NewError(http.StatusTeapot, "short and stout")
	})

	tests := []struct {
		path string
		code int
		msg  string
	}{
		{"/too-large", http.StatusBadRequest, _msgTooLarge},
		{"/panic", http.StatusInternalServerError, _msgInternal},
		{"/teapot", http.StatusTeapot, "short and stout"},
		{"/missing", http.StatusNotFound, "Cannot GET /missing"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := do(t, s.App, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, tt.msg, body["error"])
			assertCORS(t, resp)
		})
	}
}
