package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

type contextKey string

const IdentityKey contextKey = "identity"

// IdentityClaims are the claims issued by the external identity provider.
type IdentityClaims struct {
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) Identity() models.Identity {
	return models.Identity{
		ExternalID:   c.Subject,
		Email:        c.Email,
		FirstName:    c.GivenName,
		LastName:     c.FamilyName,
		ProfileImage: c.Picture,
	}
}

// IdentityAuth verifies HS256 bearer tokens and never issues them in production.
type IdentityAuth struct {
	Secret []byte
}

func NewIdentityAuth(secret string) *IdentityAuth {
	return &IdentityAuth{Secret: []byte(secret)}
}

var errMissingSubject = errors.New("token has no subject")

// Parse verifies tokenStr and returns the caller identity.
func (a *IdentityAuth) Parse(tokenStr string) (models.Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid {
		return models.Identity{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return models.Identity{}, errMissingSubject
	}
	return claims.Identity(), nil
}

// Sign issues a token for id. Used by tests and local tooling.
func (a *IdentityAuth) Sign(id models.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Email:      id.Email,
		GivenName:  id.FirstName,
		FamilyName: id.LastName,
		Picture:    id.ProfileImage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Middleware rejects requests without a valid identity token.
func (a *IdentityAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", r)
			return
		}

		id, err := a.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", r)
			}
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the identity when a valid token is present and otherwise
// lets the request through anonymously.
func (a *IdentityAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenStr, ok := bearerToken(r); ok {
			if id, err := a.Parse(tokenStr); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), IdentityKey, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentity returns the caller and whether one is authenticated.
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok && id.ExternalID != ""
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
