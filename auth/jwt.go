package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-jwt/jwt/v5/request"
	"github.com/google/uuid"
)

const CookieName = "portal_session"

type JwtClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type ClaimsKeyType string

var CtxJwtClaimsKey ClaimsKeyType = "jwtClaims"

func GenerateJWT(sessionID uuid.UUID, ttl time.Duration, jwtKey []byte) (string, error) {
	now := time.Now()
	claims := &JwtClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ValidateJWT(tokenStr string, jwtKey []byte) (*JwtClaims, error) {
	claims := &JwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature")
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, errors.New("invalid session id")
	}

	return claims, nil
}

// cookieExtractor reads the session token from the portal cookie.
type cookieExtractor struct{}

func (cookieExtractor) ExtractToken(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", request.ErrNoTokenInRequest
	}
	return c.Value, nil
}

// Extractor looks at the session cookie first and the Authorization header
// second; the terminal dashboard has no cookie store of its own.
var Extractor = request.MultiExtractor{cookieExtractor{}, request.BearerExtractor{}}

// GetJwtAuthMiddleware puts the claims of a valid session token into the
// request context. Requests without a token, or with an invalid or expired
// one, carry nil claims and get a fresh session further down.
func GetJwtAuthMiddleware(jwtKey []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			var claims *JwtClaims
			if token, err := Extractor.ExtractToken(r); err == nil {
				if c, err := ValidateJWT(token, jwtKey); err == nil {
					claims = c
				}
			}
			ctx := context.WithValue(r.Context(), CtxJwtClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ClaimsFromContext returns the claims set by the middleware, or nil.
func ClaimsFromContext(ctx context.Context) *JwtClaims {
	claims, _ := ctx.Value(CtxJwtClaimsKey).(*JwtClaims)
	return claims
}
