package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour

	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carried inside access tokens.
type Claims struct {
	UserID string `json:"sub_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Init sets the signing secret and token lifetime. Must be called once at
// startup before tokens are issued or parsed.
func Init(secret string, ttlMinutes int) {
	jwtSecret = []byte(secret)
	if ttlMinutes > 0 {
		tokenTTL = time.Duration(ttlMinutes) * time.Minute
	}
}

// GenerateToken issues a signed HS256 access token for the user.
func GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates the token signature and expiry and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
