/*
auth.go - API-key authentication middleware

Keys are presented as "X-API-Key: <key>" or "Authorization: Bearer <key>".
Lookup runs on the key's 8-character prefix; the presented key is then
compared against each candidate's bcrypt hash. Successful use stamps
last_used_at.

Authentication is off by default (local development); the health endpoint
is never authenticated.
*/
package api

import (
	"net/http"
	"strings"

	"github.com/warp/allocation-tracker/apikey"
)

// RequireAPIKey rejects requests without a valid active API key.
func (h *Handler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing API key")
			return
		}

		candidates, err := h.Store.FindAPIKeysByPrefix(r.Context(), apikey.Prefix(key))
		if err != nil {
			h.internalError(w, "failed to look up API key", err)
			return
		}
		for _, candidate := range candidates {
			if apikey.Matches(candidate.KeyHash, key) {
				if err := h.Store.TouchAPIKey(r.Context(), candidate.ID); err != nil {
					h.Log.WithError(err).Warn("failed to stamp API key usage")
				}
				next.ServeHTTP(w, r)
				return
			}
		}
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid API key")
	})
}

func extractKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
