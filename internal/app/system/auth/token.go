// internal/app/system/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned by Verify for any token that fails signature,
// structure, or expiry checks. Callers must not distinguish the cases.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the session token claims. The role is a point-in-time snapshot
// taken at issuance; it does not reflect later role changes until the token
// is reissued.
type Claims struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed session tokens. Tokens are
// stateless: validity is solely a function of signature and expiry.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a TokenManager from the configured signing key and
// token lifetime. The key must be non-empty; short keys are tolerated with
// a warning so local development stays easy.
func NewTokenManager(secret string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing key is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("token signing key is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a signed token for the given user. The embedded role is the
// role stored on the user record, never a client-supplied value.
func (tm *TokenManager) Issue(u *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)

	claims := Claims{
		Role:       u.Role,
		EmployeeID: u.EmployeeID,
		Name:       u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token string, returning its claims.
// Expired, malformed, mis-signed, and wrong-algorithm tokens all fail with
// ErrInvalidToken.
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
