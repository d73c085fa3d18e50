package http

import (
	"net/http"

	applog "askcents/internal/log"
)

func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Rewards.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type completeResponse struct {
	TaskID  string `json:"task_id"`
	Awarded bool   `json:"awarded"`
	Points  int    `json:"points"`
}

// handleCompleteTask is idempotent: repeating it returns 200 with awarded
// false.
func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	awarded, err := s.deps.Rewards.Complete(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	points, err := s.deps.Rewards.Points(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if awarded {
		applog.FromContext(ctx).InfoContext(ctx, "Reward task completed", applog.FieldTaskID, id, "points", points)
	}
	writeJSON(w, http.StatusOK, completeResponse{TaskID: id, Awarded: awarded, Points: points})
}

// handleResetRewards starts a new week: points and completions are cleared.
func (s *Server) handleResetRewards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.deps.Rewards.Reset(ctx); err != nil {
		writeServiceError(w, r, err)
		return
	}
	applog.FromContext(ctx).InfoContext(ctx, "Rewards reset")
	sum, err := s.deps.Rewards.Summary(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Prefs.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

type settingBody struct {
	Key   string `json:"key,omitempty"`
	Value *bool  `json:"value"`
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	v, err := s.deps.Prefs.Get(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingBody{Key: key, Value: &v})
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req settingBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.deps.Prefs.Set(r.Context(), key, *req.Value); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingBody{Key: key, Value: req.Value})
}
