package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/db"
	"storefront/internal/models"
)

type fakeWelcomer struct {
	sentTo []string
	err    error
}

func (f *fakeWelcomer) SendWelcome(firstName, email string) error {
	f.sentTo = append(f.sentTo, email)
	return f.err
}

func newTestService(t *testing.T, w Welcomer) *Service {
	t.Helper()
	svc, _ := newTestServiceDB(t, w)
	return svc
}

func newTestServiceDB(t *testing.T, w Welcomer) (*Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	return NewService(conn, w, log), conn
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:       "Ann",
		LastName:        "Lee",
		Email:           "Ann@Example.com ",
		Password:        "pw123456",
		ConfirmPassword: "pw123456",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	w := &fakeWelcomer{}
	svc := newTestService(t, w)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, models.DefaultProfileImage, u.ProfileImage)
	assert.NotEqual(t, "pw123456", u.PasswordHash)
	assert.Equal(t, []string{"ann@example.com"}, w.sentTo)

	got, err := svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	req := validRequest()
	req.LastName = " "
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrMissingFields)

	req = validRequest()
	req.ConfirmPassword = "different"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = svc.Register(ctx, validRequest())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validRequest())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterKeepsAccountWhenMailFails(t *testing.T) {
	svc := newTestService(t, &fakeWelcomer{err: errors.New("smtp down")})
	ctx := context.Background()

	u, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	_, err = svc.Get(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestPasswordWhitespaceIsKept(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	req := validRequest()
	req.Password = " pw123456 "
	req.ConfirmPassword = " pw123456 "
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "pw123456"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: " pw123456 "})
	assert.NoError(t, err)

	req = validRequest()
	req.Email = "blank@example.com"
	req.Password = "   "
	req.ConfirmPassword = "   "
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrMissingFields)
}

// A concurrent registration that wins between the email check and the
// insert still maps to ErrEmailTaken.
func TestRegisterConcurrentDuplicate(t *testing.T) {
	svc, conn := newTestServiceDB(t, nil)

	injected := false
	err := conn.Callback().Create().Before("gorm:create").Register("test:concurrent_user", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "users" {
			return
		}
		injected = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (first_name, last_name, email, password_hash, profile_image, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			"Other", "User", "ann@example.com", "x", models.DefaultProfileImage, now, now,
		)
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRequest())
	assert.True(t, injected)
	assert.ErrorIs(t, err, ErrEmailTaken)
}
