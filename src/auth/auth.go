package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// -----------------------------------------------------------------------------
// Password hashing (salted SHA-256, "salt$hash" on disk)
// -----------------------------------------------------------------------------

// HashPassword hashes a password with a fresh random salt.
func HashPassword(password string) string {
	salt := randomHex(16)
	sum := sha256.Sum256([]byte(salt + password))
	return fmt.Sprintf("%s$%s", salt, hex.EncodeToString(sum[:]))
}

// -----------------------------------------------------------------------------

// VerifyPassword checks a plaintext password against a stored hash.
func VerifyPassword(plain, hashed string) bool {
	parts := strings.SplitN(hashed, "$", 2)
	if len(parts) != 2 {
		return false
	}
	sum := sha256.Sum256([]byte(parts[0] + plain))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(parts[1])) == 1
}

// -----------------------------------------------------------------------------
// JWT access tokens (HS256, 12h expiry)
// -----------------------------------------------------------------------------

const tokenLifetime = 12 * time.Hour

// CreateAccessToken issues a signed bearer token for the given username.
func CreateAccessToken(username, secretKey string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().UTC().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// -----------------------------------------------------------------------------

// ParseToken verifies a bearer token and returns the subject username.
func ParseToken(tokenStr, secretKey string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("invalid token: missing subject")
	}
	return sub, nil
}
