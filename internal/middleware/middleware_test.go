package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUsername(r.Context())))
}

func TestTokenRoundTrip(t *testing.T) {
	tok, exp, err := IssueToken("s3cret", "alice", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = ParseToken("other", tok)
	assert.Error(t, err)

	expired, _, err := IssueToken("s3cret", "alice", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.Error(t, err)

	_, _, err = IssueToken("", "alice", time.Hour)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	h := Auth(AuthConfig{Secret: "s3cret"})(http.HandlerFunc(echoUser))
	tok, _, err := IssueToken("s3cret", "bob", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		setup  func(*http.Request)
		target string
		code   int
		body   string
	}{
		{"missing", func(*http.Request) {}, "/", http.StatusUnauthorized, ""},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, "/", http.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/", http.StatusUnauthorized, ""},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, "/", http.StatusOK, "bob"},
		{"query", func(*http.Request) {}, "/?token=" + tok, http.StatusOK, "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestAuthDevMode(t *testing.T) {
	h := Auth(AuthConfig{DevMode: true, DevUser: "dev"})(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "dev", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DevUserHeader, "carol")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "carol", rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 1, Interval: time.Hour, Burst: 2})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)
	rec := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code, "limits are per client")
}
