package http

import (
	"context"
	"net/http"
	"sync"

	"askcents/internal/advice"
	"askcents/internal/aggregator"
	"askcents/internal/amqp"
	"askcents/internal/cache"
	"askcents/internal/goals"
	"askcents/internal/insights"
	"askcents/internal/kv"
	applog "askcents/internal/log"
	"askcents/internal/middleware/ratelimit"
	"askcents/internal/middleware/security"
	"askcents/internal/middleware/trace"
	"askcents/internal/rewards"
	"askcents/internal/worker"
)

// LinkClient is the account-linking side of the aggregation proxy.
type LinkClient interface {
	CreateLinkToken(ctx context.Context, userID string) (aggregator.LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken, userID string) (aggregator.Exchange, error)
	RemoveItem(ctx context.Context, userID string) error
	Identity(ctx context.Context) ([]aggregator.AccountOwners, error)
}

// RefreshPublisher queues an asynchronous insights refresh.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, userID, reason string) (*amqp.RefreshMessage, error)
}

// Deps are the services the API serves. Link, Publisher, Advice and Ready
// are optional.
type Deps struct {
	Source    aggregator.Source
	Link      LinkClient
	Insights  *insights.Service
	Advice    *advice.Service
	Goals     *goals.Service
	Rewards   *rewards.Service
	Prefs     *kv.Preferences
	Store     kv.Store
	Publisher RefreshPublisher
	Ready     func(ctx context.Context) error
	Logger    *applog.Logger
	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	deps       Deps
	logger     *applog.Logger
	structured *applog.StructuredLogger
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware

	// latest holds the newest analysis built by this process.
	latest insights.Latest[worker.Snapshot]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if deps.Insights == nil {
		deps.Insights = insights.NewService(nil, nil)
	}
	if deps.Store == nil {
		deps.Store = kv.NewMemory()
	}
	if deps.Goals == nil {
		deps.Goals = goals.NewService(nil)
	}
	if deps.Rewards == nil {
		deps.Rewards = rewards.NewService(deps.Store)
	}
	if deps.Prefs == nil {
		deps.Prefs = kv.NewPreferences(deps.Store)
	}
	if deps.Advice == nil {
		deps.Advice = advice.NewService(nil, deps.Store)
	}

	if deps.RateLimit.RequestsPerWindow == 0 && len(deps.RateLimit.Methods) == 0 {
		deps.RateLimit = ratelimit.DefaultConfig()
	}

	detector := security.NewDetector()
	s := &Server{
		deps:       deps,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		limiter:    ratelimit.NewLimiter(deps.RateLimit),
		detector:   detector,
		tracer:     trace.NewMiddleware(detector.ExtractClientIP, logger),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.chain(mux),
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/insights/latest", s.handleLatestInsights)
	mux.HandleFunc("POST /api/insights/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/projection", s.handleProjection)
	mux.HandleFunc("GET /api/categories", handleCategories)
	mux.HandleFunc("GET /api/advice/weekly", s.handleWeeklyAdvice)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/suggestions", handleChatSuggestions)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("PATCH /api/goals/{id}/progress", s.handleUpdateProgress)

	mux.HandleFunc("GET /api/rewards", s.handleRewards)
	mux.HandleFunc("POST /api/rewards/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("POST /api/rewards/reset", s.handleResetRewards)

	mux.HandleFunc("GET /api/settings", s.handleListSettings)
	mux.HandleFunc("GET /api/settings/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /api/settings/{key}", s.handlePutSetting)

	mux.HandleFunc("POST /api/link/token", s.handleLinkToken)
	mux.HandleFunc("POST /api/link/exchange", s.handleLinkExchange)
	mux.HandleFunc("POST /api/link/remove", s.handleLinkRemove)
	mux.HandleFunc("GET /api/link/identity", s.handleLinkIdentity)
}

// chain wraps h with, outermost first: security headers, suspicious request
// detection, request IDs, the context logger and rate limiting.
func (s *Server) chain(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(h)
	h = applog.RequestIDMiddleware(trace.RequestID)(h)
	h = applog.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return h
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readyResponse struct {
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Memo   *cache.Stats `json:"memo,omitempty"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	resp := readyResponse{Status: "ready"}
	if stats, ok := s.deps.Insights.MemoStats(); ok {
		resp.Memo = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}
