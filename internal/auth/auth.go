// Package auth verifies Firebase ID tokens on incoming requests.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const verifyTimeout = 5 * time.Second

const userKey = "auth.user"

var (
	ErrNoToken      = errors.New("empty token provided")
	ErrInvalidToken = errors.New("invalid or expired Firebase ID token")
)

// Verifier checks a Firebase ID token. *auth.Client implements it.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// User is the signed-in identity.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
}

// ExtractIDToken strips the Bearer prefix from an Authorization header.
func ExtractIDToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}

// Verify checks idToken and returns its user.
func Verify(ctx context.Context, v Verifier, idToken string) (User, error) {
	if idToken == "" {
		return User{}, ErrNoToken
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	token, err := v.VerifyIDToken(ctx, idToken)
	if err != nil {
		return User{}, errors.Join(ErrInvalidToken, err)
	}
	if token.UID == "" {
		return User{}, errors.New("token missing user ID")
	}
	u := User{UID: token.UID}
	u.Email, _ = token.Claims["email"].(string)
	u.DisplayName, _ = token.Claims["name"].(string)
	u.EmailVerified, _ = token.Claims["email_verified"].(bool)
	return u, nil
}

// Middleware rejects requests without a valid token and stores the user on
// the gin context.
func Middleware(v Verifier, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := Verify(c.Request.Context(), v, ExtractIDToken(c.GetHeader("Authorization")))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// UserFrom returns the user stored by Middleware.
func UserFrom(c *gin.Context) (User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}
