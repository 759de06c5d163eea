package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/mailer"
)

func TestContactSubmit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ann",
		"email":   "ann@example.com",
		"subject": "Sizes",
		"message": "Do you have XL?",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message sent successfully!"}`, w.Body.String())
	require.Len(t, env.contact.forms, 1)
	assert.Equal(t, "Sizes", env.contact.forms[0].Subject)
}

func TestContactFailures(t *testing.T) {
	env := newTestEnv(t)

	env.contact.err = mailer.ErrMissingFields
	w := env.do(jsonRequest(t, http.MethodPost, "/api/contact", map[string]string{"name": "Ann"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.contact.err = errors.New("smtp down")
	w = env.do(jsonRequest(t, http.MethodPost, "/api/contact", map[string]string{"name": "Ann"}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestFrontendFallback(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "register.html"), []byte("register"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(public, "shop.html"), []byte("shop"), 0o644))

	h := frontend(public)
	for target, want := range map[string]string{
		"/shop.html":        "shop",
		"/missing":          "register",
		"/../../etc/passwd": "register",
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.URL.Path = target
		h(c)
		assert.Equal(t, want, w.Body.String(), target)
	}
}
