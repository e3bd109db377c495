package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskplanner/internal/apperr"
	"taskplanner/internal/auth"
	"taskplanner/internal/services"
)

func newAuthStack(t *testing.T, ttl time.Duration) (*services.RegisterServiceImpl, *services.AuthServiceImpl) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", ttl)
	require.NoError(t, err)
	return services.NewRegisterService(4), services.NewAuthService(issuer)
}

func aliceRequest() services.RegistrationRequest {
	return services.RegistrationRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-password",
	}
}

func TestRegister(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, _ := newAuthStack(t, 30*time.Minute)

	user, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, _ := newAuthStack(t, 30*time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	req := aliceRequest()
	req.Username = "alice2"
	_, err = registerSvc.Register(db, req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "email")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, _ := newAuthStack(t, 30*time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	req := aliceRequest()
	req.Email = "other@example.com"
	_, err = registerSvc.Register(db, req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "username")
}

// When both the email and the username collide, the email conflict is
// the one reported; the email check runs first.
func TestRegisterDuplicateBoth(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, _ := newAuthStack(t, 30*time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	_, err = registerSvc.Register(db, aliceRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestLogin(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, authSvc := newAuthStack(t, 30*time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	token, err := authSvc.Login(db, "alice@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

// Unknown email and wrong password produce the same error, so login
// cannot be used to probe which accounts exist.
func TestLoginEnumerationResistance(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, authSvc := newAuthStack(t, 30*time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	_, errWrongPassword := authSvc.Login(db, "alice@example.com", "wrong-password")
	_, errUnknownEmail := authSvc.Login(db, "nobody@example.com", "s3cret-password")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrongPassword))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errUnknownEmail))
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestWhoami(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, authSvc := newAuthStack(t, 30*time.Minute)

	registered, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	token, err := authSvc.Login(db, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	user, err := authSvc.Whoami(db, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestWhoamiExpiredToken(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, authSvc := newAuthStack(t, -time.Minute)

	_, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	token, err := authSvc.Login(db, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	_, err = authSvc.Whoami(db, token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestWhoamiTamperedToken(t *testing.T) {
	db := newAuthDB(t)
	_, authSvc := newAuthStack(t, 30*time.Minute)

	_, err := authSvc.Whoami(db, "not.a.token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

// A valid token for a deleted account is Unauthorized, not NotFound.
func TestWhoamiAccountGone(t *testing.T) {
	db := newAuthDB(t)
	registerSvc, authSvc := newAuthStack(t, 30*time.Minute)

	user, err := registerSvc.Register(db, aliceRequest())
	require.NoError(t, err)

	token, err := authSvc.Login(db, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	require.NoError(t, db.Delete(user).Error)

	_, err = authSvc.Whoami(db, token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
