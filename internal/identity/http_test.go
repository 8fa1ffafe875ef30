package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	engine   *gin.Engine
	cache    *memCache
	resolver *JWTResolver
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cache := newMemCache()
	resolver := NewJWTResolver("identity-test-secret")
	handler := NewHandler(NewCodeStore(cache, time.Minute), resolver, zerolog.Nop())

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/auth"))

	return &handlerFixture{engine: engine, cache: cache, resolver: resolver}
}

func (f *handlerFixture) post(t *testing.T, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

// issuedCode reads the code stored for the email; the test stands in for the
// out-of-band delivery channel.
func (f *handlerFixture) issuedCode(t *testing.T, email string) string {
	t.Helper()
	stored, err := f.cache.Get(context.Background(), "login_code:"+email)
	require.NoError(t, err)
	var entry loginCode
	require.NoError(t, json.Unmarshal([]byte(stored), &entry))
	return entry.Code
}

func TestExchangeMintsOnlyTheBoundIdentity(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.post(t, "/auth/code", gin.H{"user_id": "alice-id", "email": "alice@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	code := f.issuedCode(t, "alice@example.com")

	// Identity fields in the exchange body carry no weight: the session is
	// minted for the user id bound when the code was issued.
	rec, out := f.post(t, "/auth/token", gin.H{
		"email":   "alice@example.com",
		"code":    code,
		"user_id": "mallory",
		"role":    "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	id, err := f.resolver.Resolve(context.Background(), out["token"].(string))
	require.NoError(t, err)
	require.Equal(t, "alice-id", id.UserID)
	require.Empty(t, id.Role)
}

func TestExchangeRejectsWrongOrSpentCode(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.post(t, "/auth/code", gin.H{"user_id": "alice-id", "email": "alice@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	code := f.issuedCode(t, "alice@example.com")

	rec, out := f.post(t, "/auth/token", gin.H{"email": "alice@example.com", "code": "0000000"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", out["code"])

	rec, _ = f.post(t, "/auth/token", gin.H{"email": "alice@example.com", "code": code})
	require.Equal(t, http.StatusOK, rec.Code)

	// The code is spent; a replay is rejected.
	rec, out = f.post(t, "/auth/token", gin.H{"email": "alice@example.com", "code": code})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", out["code"])
}

func TestRequestCodeValidatesBody(t *testing.T) {
	f := newHandlerFixture(t)

	rec, out := f.post(t, "/auth/code", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", out["code"])

	rec, out = f.post(t, "/auth/token", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", out["code"])
}
