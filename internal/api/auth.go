package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid token")

const tokenDuration = 24 * time.Hour

// Claims are the JWT claims issued at sign-in.
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Auth issues and verifies tokens and owns the signup/signin handlers'
// password handling.
type Auth struct {
	users  user.Store
	secret []byte
}

// NewAuth creates an Auth over the user store.
func NewAuth(users user.Store, secret string) *Auth {
	return &Auth{users: users, secret: []byte(secret)}
}

// Token issues a signed token for the user.
func (a *Auth) Token(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses and validates a token, returning its claims.
func (a *Auth) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type ctxKey int

const actorKey ctxKey = 0

// Require wraps a handler with bearer-token authentication and injects
// the acting user into the request context.
func (a *Auth) Require(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, 401, "no token provided")
			return
		}
		claims, err := a.Verify(tokenString)
		if err != nil {
			writeError(w, 401, "invalid token")
			return
		}
		actor := task.UserRef{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}
		next(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// actingUser returns the authenticated user stored by Require.
func actingUser(r *http.Request) task.UserRef {
	actor, _ := r.Context().Value(actorKey).(task.UserRef)
	return actor
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, 400, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	u, err := s.users.Create(r.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, 409, "email already registered")
			return
		}
		writeError(w, 500, err.Error())
		return
	}

	token, err := s.auth.Token(u)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, map[string]any{"token": token, "user": u})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}

	u, err := s.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, 401, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, 401, "invalid credentials")
		return
	}

	token, err := s.auth.Token(u)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"token": token, "user": u})
}
