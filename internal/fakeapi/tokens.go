package fakeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Generation int `json:"gen"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID int64) (string, error) {
	s.mu.Lock()
	gen := s.generation
	ttl := s.tokenTTL
	s.mu.Unlock()

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.secret)
}

// verifyToken returns the user id carried by a valid, unrevoked token.
func (s *Server) verifyToken(raw string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, errTokenExpired
		}
		return 0, errTokenInvalid
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return 0, errTokenInvalid
	}

	s.mu.Lock()
	revoked := c.Generation != s.generation
	s.mu.Unlock()
	if revoked {
		return 0, errTokenRevoked
	}

	return strconv.ParseInt(c.Subject, 10, 64)
}

// requireAuth rejects requests without a valid bearer token the way
// flask-jwt-extended does: 401 with a {"msg": ...} body.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'"})
			return
		}

		userID, err := s.verifyToken(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": err.Error()})
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// RevokeTokens invalidates every token issued so far, simulating expiry.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}
