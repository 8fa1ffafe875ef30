package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"crm-chat/internal/infrastructure/cache/port"
	"crm-chat/pkg/apperrors"
)

const codeDigits = 6

// loginCode binds a one-time code to the identity that requested it. The
// exchange can only ever mint a session for this stored user id; nothing the
// exchanging caller sends can change it.
type loginCode struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// CodeStore keeps one-time login codes in the shared cache with an explicit
// TTL. A code is consumed exactly once: Consume deletes it before reporting
// success, and expiry takes care of abandoned codes. Nothing here lives on a
// process-global map.
type CodeStore struct {
	cache port.Cache
	ttl   time.Duration
}

func NewCodeStore(cache port.Cache, ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CodeStore{cache: cache, ttl: ttl}
}

// Issue generates a fresh code for the email, bound to userID, replacing any
// previous unconsumed code for that email.
func (s *CodeStore) Issue(ctx context.Context, email, userID string) (string, error) {
	if email == "" || userID == "" {
		return "", apperrors.InvalidInput("email and user id are required")
	}
	code, err := randomCode()
	if err != nil {
		return "", err
	}
	entry, err := json.Marshal(loginCode{UserID: userID, Code: code})
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, codeKey(email), string(entry), s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Consume validates the code for the email and returns the user id bound at
// issue time. On success the code is deleted and cannot be used again; a
// wrong code leaves the stored one intact.
func (s *CodeStore) Consume(ctx context.Context, email, code string) (string, error) {
	stored, err := s.cache.Get(ctx, codeKey(email))
	if errors.Is(err, port.ErrMiss) {
		return "", apperrors.Unauthorized("login code expired or never issued")
	}
	if err != nil {
		return "", err
	}
	var entry loginCode
	if err := json.Unmarshal([]byte(stored), &entry); err != nil {
		return "", apperrors.Unauthorized("login code expired or never issued")
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return "", apperrors.Unauthorized("login code does not match")
	}
	if _, err := s.cache.Del(ctx, codeKey(email)); err != nil {
		return "", err
	}
	return entry.UserID, nil
}

func codeKey(email string) string {
	return "login_code:" + email
}

func randomCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
