// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

// RequireAdminToken rejects requests whose bearer token does not match the
// bcrypt hash. An empty hash locks the admin API entirely; config.Load
// refuses to start production without one.
func RequireAdminToken(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || hash == "" ||
				bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
				slog.Warn("admin auth failed",
					"request_id", RequestIDFromCtx(r.Context()),
					"path", r.URL.Path,
					"remote", ClientIP(r),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
