package token

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func randomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Error generating random bytes: %v", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func TestJwtService(t *testing.T) {
	secretKey := randomSecret()
	issuer := "vinom-mines"
	svc := NewJwtService(secretKey, issuer)

	t.Run("game claim survives a round trip", func(t *testing.T) {
		gameID := uuid.New()
		token, err := svc.Generate(map[string]interface{}{i.ClaimGameID: gameID.String()}, 5*time.Minute)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.Decode(token)
		assert.NoError(t, err)
		assert.Equal(t, gameID.String(), claims[i.ClaimGameID])
		assert.Equal(t, issuer, claims["iss"])
	})

	t.Run("caller cannot override the issuer", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"iss": "someone-else"}, time.Minute)
		assert.NoError(t, err)

		claims, err := svc.Decode(token)
		assert.NoError(t, err)
		assert.Equal(t, issuer, claims["iss"])
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := svc.Decode("invalidTokenString")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{i.ClaimGameID: uuid.NewString()}, -time.Minute)
		assert.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJwtService(randomSecret(), issuer)
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		assert.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("token from another issuer", func(t *testing.T) {
		other := NewJwtService(secretKey, "other-service")
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		assert.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrWrongIssuer)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"iss": issuer}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})
}
