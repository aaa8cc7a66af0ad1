package server

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userInfoKey contextKey = "userInfo"
	userIDKey   contextKey = "userID"
)

// UserInfo is the resolved identity of the caller.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// defaultUser is used when no Tailscale client is configured, e.g. when
// running on a plain listener during development.
var defaultUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// Identity resolves the caller's tailnet identity and maps it to a user row.
// When no Tailscale client is wired, or WhoIs fails (tagged nodes carry no
// user), the request falls back to the local dev user.
func (s *Server) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := defaultUser
		if s.lc != nil {
			if who, err := s.lc.WhoIs(r.Context(), r.RemoteAddr); err == nil && who.UserProfile != nil {
				info = UserInfo{
					Login:       who.UserProfile.LoginName,
					DisplayName: who.UserProfile.DisplayName,
				}
			}
		}

		ctx := context.WithValue(r.Context(), userInfoKey, info)
		if s.db != nil {
			if id, err := s.db.GetOrCreateUser(ctx, info.Login, info.DisplayName); err == nil {
				ctx = context.WithValue(ctx, userIDKey, id)
			} else {
				s.log.Error("resolving user", "login", info.Login, "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the resolved user row ID, defaulting to the
// first user when identity middleware did not run.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return defaultUser
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}
