package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/nobs/internal/netx"
)

type loginRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.logger.Info(ctx, "ORCID login initiated")

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	res, err := s.auth.Login(ctx, req.Code)
	if err != nil {
		s.fail(ctx, w, err, "Authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUser(res.User),
		"token": res.Token,
	})
}

// handleLogout always reports success; a missing or already revoked token
// has nothing left to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)
	if p == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
		return
	}

	if err := s.auth.Logout(ctx, p.TokenID); err != nil {
		s.logger.Warn(ctx, "logout failed", "user_id", p.User.ID, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
		return
	}

	s.logger.Info(ctx, "user logged out", "orcid", p.User.Orcid)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	p, err := s.auth.Authenticate(r.Context(), netx.BearerToken(r))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"authenticated": false,
			"tokenValid":    false,
			"message":       "Invalid or expired token",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          toUser(p.User),
		"tokenValid":    true,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(principalFrom(r.Context()).User)})
}

func (s *Server) handleRefreshOrcidToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)

	expiresAt, err := s.auth.RefreshOrcidToken(ctx, p.User.ID)
	if err != nil {
		s.fail(ctx, w, err, "Failed to refresh token")
		return
	}

	var exp *string
	if expiresAt != nil {
		v := isoTime(*expiresAt)
		exp = &v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Token refreshed successfully",
		"expiresAt": exp,
	})
}
