package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", "academia", time.Minute)
	u := uuid.New()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_DefaultTTL(t *testing.T) {
	j := NewJWT("secret", "", 0)
	require.Equal(t, defaultAccessTTL, j.accessTTL)
}

func TestJWT_WrongSecret(t *testing.T) {
	access, err := NewJWT("secret", "academia", time.Minute).GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = NewJWT("other", "academia", time.Minute).ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_WrongIssuer(t *testing.T) {
	access, err := NewJWT("secret", "someone-else", time.Minute).GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = NewJWT("secret", "academia", time.Minute).ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret", "academia", time.Minute)
	j.now = func() time.Time { return time.Now().Add(-time.Hour) }

	access, err := j.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.ParseAccessToken(access)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	u := uuid.New()
	now := time.Now()
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "academia",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:    u,
		TokenType: "refresh",
	})
	signed, err := refresh.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWT("secret", "academia", time.Minute).ParseAccessToken(signed)
	require.Error(t, err)
}

func TestJWT_RejectsNoneAlgorithm(t *testing.T) {
	now := time.Now()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:    uuid.New(),
		TokenType: typeAccess,
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWT("secret", "", time.Minute).ParseAccessToken(signed)
	require.Error(t, err)
}
