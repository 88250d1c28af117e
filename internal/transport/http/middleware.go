package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/mvaleed/innkeep/internal/auth"
)

type claimsKey struct{}

func getUserClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// authMiddleware requires a bearer access token. An expired token answers
// TOKEN_EXPIRED so the mobile client knows to use its refresh token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization header", Code: "UNAUTHORIZED"})
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid authorization header format", Code: "UNAUTHORIZED"})
			return
		}

		claims, err := s.services.Auth.ValidateToken(r.Context(), token)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token expired", Code: "TOKEN_EXPIRED"})
			return
		case err != nil:
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token", Code: "UNAUTHORIZED"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// requireAdmin guards catalog writes and booking administration.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := getUserClaims(r.Context()); claims == nil || !claims.IsAdmin() {
			s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "administrator access required", Code: "FORBIDDEN"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP is recorded on refresh tokens. middleware.RealIP has already
// applied X-Forwarded-For and X-Real-IP to RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
