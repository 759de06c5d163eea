package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/accounts"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/db"
	"storefront/internal/mailer"
	"storefront/internal/orders"
	"storefront/internal/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	dir      *uploads.Dir
	issuer   *auth.Issuer
	accounts *accounts.Service
	contact  *fakeContact
}

type fakeContact struct {
	forms []mailer.ContactForm
	err   error
}

func (f *fakeContact) SendContact(form mailer.ContactForm) error {
	if f.err != nil {
		return f.err
	}
	f.forms = append(f.forms, form)
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	dir, err := uploads.NewDir(filepath.Join(t.TempDir(), uploads.DirName))
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	env := &testEnv{
		db:       conn,
		dir:      dir,
		issuer:   auth.NewIssuer("test-secret", time.Hour),
		accounts: accounts.NewService(conn, nil, log),
		contact:  &fakeContact{},
	}
	env.router = NewRouter(Deps{
		DB:            conn,
		Uploads:       dir,
		Products:      catalog.NewStore(conn, dir, log),
		Accounts:      env.accounts,
		Orders:        orders.NewService(conn, log),
		Contact:       env.contact,
		Issuer:        env.issuer,
		Log:           log,
		CORSOrigin:    "http://localhost:5500",
		SessionSecret: "session-secret",
	})
	return env
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) authCookie(t *testing.T, userID uint, email string) *http.Cookie {
	t.Helper()
	token, err := e.issuer.Issue(userID, email)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// multipartRequest builds a form with text fields and one "images" part
// per file name.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range files {
		part, err := w.CreateFormFile(imagesField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
