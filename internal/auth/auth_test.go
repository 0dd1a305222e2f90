package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]*fbauth.Token

func (f fakeVerifier) VerifyIDToken(ctx context.Context, token string) (*fbauth.Token, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("no deadline")
	}
	if t, ok := f[token]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

var verifier = fakeVerifier{
	"good": {UID: "u1", Claims: map[string]interface{}{
		"email": "ada@example.com", "name": "Ada", "email_verified": true,
	}},
	"anon": {UID: ""},
}

func TestExtractIDToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractIDToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractIDToken("bearer abc"))
	assert.Equal(t, "abc", ExtractIDToken("abc"))
	assert.Equal(t, "", ExtractIDToken(""))
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	u, err := Verify(ctx, verifier, "good")
	require.NoError(t, err)
	assert.Equal(t, User{UID: "u1", Email: "ada@example.com", DisplayName: "Ada", EmailVerified: true}, u)

	_, err = Verify(ctx, verifier, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = Verify(ctx, verifier, "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Verify(ctx, verifier, "anon")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(verifier, zerolog.Nop()))
	r.GET("/me", func(c *gin.Context) {
		u, ok := UserFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, u)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","email":"ada@example.com","displayName":"Ada","emailVerified":true}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
