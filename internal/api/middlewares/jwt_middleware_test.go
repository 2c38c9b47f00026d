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

func TestIssueAndParseToken(t *testing.T) {
	tok, err := IssueToken("s3cret", "user-1", time.Now())
	require.NoError(t, err)

	id, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = ParseToken("other", tok)
	assert.Error(t, err)

	_, err = IssueToken("", "user-1", time.Now())
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := IssueToken("s3cret", "user-1", time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", tok)
	assert.Error(t, err)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"user_id": "u"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", tok)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	var seen string
	h := JWTMiddleware("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tok, err := IssueToken("s3cret", "user-9", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + tok, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, "user-9", seen)
}
