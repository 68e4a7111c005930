package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"blockpress/globals"
	"blockpress/utils"
)

// JWT claims
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token signed with globals.JwtSecret.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("unauthorized: invalid token")
	}
	return claims, nil
}

func bearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	return header[7:], true
}

func withClaims(r *http.Request, claims *Claims) *http.Request {
	ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, globals.UsernameKey, claims.Username)
	return r.WithContext(ctx)
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if r.Header.Get("Authorization") == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		tokenString, ok := bearer(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next(w, withClaims(r, claims), ps)
	}
}

func OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if tokenString, ok := bearer(r); ok {
			if claims, err := ParseToken(tokenString); err == nil {
				r = withClaims(r, claims)
			}
		}
		// Proceed regardless of token state
		next(w, r, ps)
	}
}

// ValidateJWT checks a full Authorization header value.
func ValidateJWT(header string) (*Claims, error) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return nil, fmt.Errorf("invalid token")
	}
	return ParseToken(header[7:])
}

// Chain composes middlewares so the first one listed runs outermost.
func Chain(mws ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
