package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crm-chat/pkg/apperrors"
)

// Claims carried by the session token. Subject doubles as the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 session tokens. Every resolve path checks the
// signature and expiry; there is no decode-without-verify shortcut.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

var _ Resolver = (*JWTResolver)(nil)

func (r *JWTResolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, apperrors.ErrInvalidCredential
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, apperrors.ErrInvalidCredential
	}
	if claims.Subject == "" {
		return Identity{}, apperrors.ErrInvalidCredential
	}

	return Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

// Issue mints a signed session token. Lives here so tests and the identity
// service share one definition of the claim layout.
func (r *JWTResolver) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
