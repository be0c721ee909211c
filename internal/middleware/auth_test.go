package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// identify прогоняет запрос через WithAuth и возвращает user_id из контекста.
func identify(t *testing.T, req *http.Request) (int64, bool) {
	t.Helper()
	var (
		uid int64
		ok  bool
	)
	h := WithAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code, "WithAuth must never reject by itself")
	return uid, ok
}

func loginCookies(t *testing.T, userID int64, secret string) []*http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := SetLoginCookie(rr, userID, secret)
	require.NoError(t, err)
	return rr.Result().Cookies()
}

func TestWithAuth_Identification(t *testing.T) {
	good, err := IssueToken(9, testSecret)
	require.NoError(t, err)
	foreign, err := IssueToken(9, "other-secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		wantUID int64
		wantOK  bool
	}{
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(loginCookies(t, 77, testSecret)[0]) },
			wantUID: 77, wantOK: true,
		},
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+good) },
			wantUID: 9, wantOK: true,
		},
		{
			name: "bearer wins over cookie",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+good)
				r.AddCookie(loginCookies(t, 77, testSecret)[0])
			},
			wantUID: 9, wantOK: true,
		},
		{name: "anonymous", prepare: func(r *http.Request) {}},
		{
			name:    "cookie signed with another secret",
			prepare: func(r *http.Request) { r.AddCookie(loginCookies(t, 5, "secret-A")[0]) },
		},
		{
			name:    "bearer signed with another secret",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) },
		},
		{
			name:    "garbage token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") },
		},
		{
			name:    "basic scheme ignored",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic "+good) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
			tt.prepare(req)
			uid, ok := identify(t, req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUID, uid)
		})
	}
}

func TestSetLoginCookie_Attributes(t *testing.T) {
	cookies := loginCookies(t, 3, testSecret)
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)

	uid, err := ParseToken(c.Value, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 3, uid)
}

func TestParseToken_Rejects(t *testing.T) {
	prev := tokenTTL
	t.Cleanup(func() { tokenTTL = prev })

	tokenTTL = -time.Minute
	expired, err := IssueToken(1, testSecret)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err, "expired token")

	tokenTTL = time.Hour
	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := noUser.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err, "token without user id")

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{UserID: 1})
	signed, err = hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err, "unexpected signing method")
}

func TestSetTokenTTL_IgnoresNonPositive(t *testing.T) {
	prev := tokenTTL
	t.Cleanup(func() { tokenTTL = prev })

	SetTokenTTL(0)
	assert.Equal(t, prev, tokenTTL)
	SetTokenTTL(-time.Second)
	assert.Equal(t, prev, tokenTTL)
	SetTokenTTL(time.Hour)
	assert.Equal(t, time.Hour, tokenTTL)
}
