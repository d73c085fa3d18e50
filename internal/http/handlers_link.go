package http

import (
	"net/http"

	applog "askcents/internal/log"
)

type linkRequest struct {
	UserID      string `json:"user_id"`
	PublicToken string `json:"public_token,omitempty"`
}

// decodeLink reads the body shared by the link endpoints. It writes the
// error reply itself and reports whether the handler should continue.
func (s *Server) decodeLink(w http.ResponseWriter, r *http.Request) (linkRequest, bool) {
	if s.deps.Link == nil {
		writeError(w, http.StatusServiceUnavailable, "account linking not configured")
		return linkRequest{}, false
	}
	var req linkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return linkRequest{}, false
	}
	req.UserID = sanitizeInput(req.UserID)
	req.PublicToken = sanitizeInput(req.PublicToken)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return linkRequest{}, false
	}
	return req, true
}

func (s *Server) handleLinkToken(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLink(w, r)
	if !ok {
		return
	}
	tok, err := s.deps.Link.CreateLinkToken(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) handleLinkExchange(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLink(w, r)
	if !ok {
		return
	}
	if req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "public_token is required")
		return
	}
	ex, err := s.deps.Link.ExchangePublicToken(r.Context(), req.PublicToken, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.linkChanged(r, req.UserID, "link_exchange")
	// the access token stays server side
	writeJSON(w, http.StatusOK, map[string]string{"item_id": ex.ItemID})
}

func (s *Server) handleLinkRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLink(w, r)
	if !ok {
		return
	}
	if err := s.deps.Link.RemoveItem(r.Context(), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.linkChanged(r, req.UserID, "link_remove")
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleLinkIdentity(w http.ResponseWriter, r *http.Request) {
	if s.deps.Link == nil {
		writeError(w, http.StatusServiceUnavailable, "account linking not configured")
		return
	}
	ids, err := s.deps.Link.Identity(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": ids})
}

// linkChanged drops this week's cached advice, which describes the old
// accounts, and requests a background rebuild. Failures are logged only.
func (s *Server) linkChanged(r *http.Request, userID, reason string) {
	ctx := r.Context()
	if err := s.deps.Advice.Invalidate(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Failed to drop cached advice after link change",
			"reason", reason,
			applog.FieldError, err)
	}
	if s.deps.Publisher == nil {
		return
	}
	if _, err := s.deps.Publisher.PublishRefresh(ctx, userID, reason); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Failed to queue refresh after link change",
			"reason", reason,
			applog.FieldError, err)
	}
}
