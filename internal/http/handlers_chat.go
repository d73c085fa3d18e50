package http

import (
	"net/http"

	"askcents/internal/advice"
	applog "askcents/internal/log"
)

type chatRequest struct {
	Question string `json:"question"`
	// Action, when set, rewrites Question with one of the quick actions.
	Action string `json:"action,omitempty"`
}

type quickAction struct {
	Action advice.QuickAction `json:"action"`
	Label  string             `json:"label"`
}

var quickActions = []quickAction{
	{advice.ActionSimple, "Explain like I'm 10"},
	{advice.ActionExamples, "Show examples"},
	{advice.ActionNext, "What's next?"},
}

type chatResponse struct {
	advice.Reply
	QuickActions []quickAction `json:"quick_actions"`
}

// handleChat answers a question against the newest analysis, building one
// when this process has none yet.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	question := sanitizeInput(req.Question)
	if req.Action != "" {
		rewritten, err := advice.Rewrite(advice.QuickAction(sanitizeInput(req.Action)), question)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		question = rewritten
	}

	snap, ok := s.latest.Get()
	if !ok {
		snap = s.buildInsights(ctx)
	}
	reply, err := s.deps.Advice.Chat(ctx, question, snap.Insights)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	applog.FromContext(ctx).InfoContext(ctx, "Chat answered", "source", reply.Source, "action", req.Action)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, QuickActions: quickActions})
}

func handleChatSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions":   advice.Starters(),
		"quick_actions": quickActions,
	})
}
