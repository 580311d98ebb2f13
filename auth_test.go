package main

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, db *DB) *Auth {
	t.Helper()
	a := NewAuth(db, zap.NewNop())
	a.cost = bcrypt.MinCost
	return a
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a := newTestAuth(t, openTestDB(t))

	id, token, err := a.Register("  ace  ", "secret")
	require.NoError(t, err)
	assert.Positive(t, id)

	gotID, name, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "ace", name)

	loginID, token2, err := a.Login("ace", "secret", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, id, loginID)
	assert.NotEmpty(t, token2)

	_, _, err = a.Login("ace", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login("nobody", "secret", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthRegisterValidation(t *testing.T) {
	a := newTestAuth(t, openTestDB(t))

	_, _, err := a.Register("x", "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = a.Register("averyveryverylongname", "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = a.Register("ace", "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = a.Register("ace", "secret")
	require.NoError(t, err)
	_, _, err = a.Register("ace", "secret2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthLoginRateLimit(t *testing.T) {
	a := newTestAuth(t, openTestDB(t))

	for i := 0; i < maxLoginAttempts; i++ {
		_, _, err := a.Login("ace", "pw", "10.0.0.2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, _, err := a.Login("ace", "pw", "10.0.0.2")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// other addresses are unaffected
	_, _, err = a.Login("ace", "pw", "10.0.0.3")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthSecretSurvivesRestart(t *testing.T) {
	db := openTestDB(t)
	_, token, err := newTestAuth(t, db).Register("ace", "secret")
	require.NoError(t, err)

	_, name, err := newTestAuth(t, db).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ace", name)
}

func TestAuthRejectsForeignTokens(t *testing.T) {
	a := newTestAuth(t, openTestDB(t))

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, pilotClaims{PlayerID: 1, Username: "ace"}).SignedString([]byte("not the secret"))
	require.NoError(t, err)
	_, _, err = a.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, pilotClaims{PlayerID: 1, Username: "ace"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = a.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = a.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
