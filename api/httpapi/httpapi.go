// Package httpapi exposes the learning service as a REST API plus a
// WebSocket event stream.
package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "skillsprint/adapters/websocket"
	"skillsprint/analytics"
	"skillsprint/content"
	"skillsprint/core"
	"skillsprint/engine"
	"skillsprint/leaderboard"
	"skillsprint/realtime"
)

// Deps bundles the collaborators the API serves. Service is required;
// the rest are optional and disable their routes when nil.
type Deps struct {
	Service *engine.LearnService
	Hub     *realtime.Hub
	Content *content.Client
	Board   leaderboard.Board
}

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// NewMux builds the http.Handler for the REST API and WebSocket stream.
// Routes:
//   - POST  {prefix}/users
//   - GET   {prefix}/users/{id}
//   - GET   {prefix}/users/{id}/tasks
//   - GET   {prefix}/users/{id}/history
//   - POST  {prefix}/users/{id}/tasks/{taskID}/complete
//   - POST  {prefix}/users/{id}/tasks/{taskID}/quiz
//   - GET   {prefix}/users/{id}/tasks/{taskID}/lesson
//   - GET   {prefix}/users/{id}/tasks/{taskID}/questions
//   - GET   {prefix}/users/{id}/progress
//   - GET   {prefix}/users/{id}/badges
//   - PATCH {prefix}/users/{id}/settings
//   - POST  {prefix}/users/{id}/reset
//   - GET   {prefix}/users/{id}/export
//   - GET   {prefix}/leaderboard
//   - GET   {prefix}/healthz
//   - WS    {prefix}/ws
func NewMux(deps Deps, opts Options) http.Handler {
	if deps.Service == nil {
		panic("httpapi.NewMux requires a service")
	}
	api := &server{deps: deps}
	mux := http.NewServeMux()
	route := func(pattern string) string {
		method, path, _ := strings.Cut(pattern, " ")
		return method + " " + withPrefix(opts.PathPrefix, path)
	}

	mux.HandleFunc(route("GET /healthz"), api.healthz)
	if deps.Hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(deps.Hub))
	}

	mux.HandleFunc(route("POST /users"), api.onboard)
	mux.HandleFunc(route("GET /users/{id}"), api.profile)
	mux.HandleFunc(route("GET /users/{id}/tasks"), api.dailyTasks)
	mux.HandleFunc(route("GET /users/{id}/history"), api.history)
	mux.HandleFunc(route("POST /users/{id}/tasks/{taskID}/complete"), api.completeTask)
	mux.HandleFunc(route("POST /users/{id}/tasks/{taskID}/quiz"), api.submitQuiz)
	mux.HandleFunc(route("GET /users/{id}/progress"), api.progress)
	mux.HandleFunc(route("GET /users/{id}/badges"), api.badges)
	mux.HandleFunc(route("PATCH /users/{id}/settings"), api.updateSettings)
	mux.HandleFunc(route("POST /users/{id}/reset"), api.reset)
	mux.HandleFunc(route("GET /users/{id}/export"), api.export)

	if deps.Content != nil {
		mux.HandleFunc(route("GET /users/{id}/tasks/{taskID}/lesson"), api.lesson)
		mux.HandleFunc(route("GET /users/{id}/tasks/{taskID}/questions"), api.questions)
	}
	if deps.Board != nil {
		mux.HandleFunc(route("GET /leaderboard"), api.leaderboard)
	}

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

type server struct {
	deps Deps
}

func (s *server) svc() *engine.LearnService { return s.deps.Service }

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	// Verify storage works with a lightweight probe read. A missing
	// profile is the expected healthy answer.
	_, err := s.svc().Profile(r.Context(), "healthcheck_probe")
	storageOK := err == nil || errors.Is(err, core.ErrProfileNotFound)

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}
	if !storageOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
		_ = json.NewEncoder(w).Encode(status)
		return
	}
	writeJSON(w, status)
}

func (s *server) onboard(w http.ResponseWriter, r *http.Request) {
	var req engine.OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	profile, tasks, err := s.svc().Onboard(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"profile": profile, "tasks": tasks})
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	p, err := s.svc().Profile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *server) dailyTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	tasks, err := s.svc().DailyTasks(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"tasks": tasks})
}

func (s *server) history(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	tasks, err := s.svc().History(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"tasks": tasks})
}

func (s *server) completeTask(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	res, err := s.svc().CompleteTask(r.Context(), user, r.PathValue("taskID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	res, err := s.svc().SubmitQuiz(r.Context(), user, r.PathValue("taskID"), body.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *server) progress(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	p, err := s.svc().Profile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tasks, err := s.svc().History(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	now := time.Now().UTC()
	writeJSON(w, map[string]any{
		"weekly_activity":     analytics.WeeklyActivity(tasks, now),
		"skill_progress":      analytics.SkillProgress(p.Skills, tasks),
		"average_quiz_score":  analytics.AverageQuizScore(tasks),
		"total_minutes":       analytics.TotalMinutes(tasks),
		"recent_achievements": analytics.RecentAchievements(p, tasks, now),
	})
}

func (s *server) badges(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	badges, err := s.svc().Badges(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"badges": badges})
}

func (s *server) updateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	var upd engine.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	p, err := s.svc().UpdateSettings(r.Context(), user, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *server) reset(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	if err := s.svc().Reset(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *server) export(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	p, err := s.svc().Profile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tasks, err := s.svc().History(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	snapshot := analytics.NewSnapshot(p, tasks, time.Now().UTC())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.json"`)
	_ = snapshot.Export(w)
}

// taskForContent resolves the task a lesson or quiz is requested for.
func (s *server) taskForContent(w http.ResponseWriter, r *http.Request, user core.UserID) (core.Task, core.Profile, bool) {
	p, err := s.svc().Profile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return core.Task{}, core.Profile{}, false
	}
	tasks, err := s.svc().History(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return core.Task{}, core.Profile{}, false
	}
	taskID := r.PathValue("taskID")
	for _, t := range tasks {
		if t.ID == taskID {
			return t, p, true
		}
	}
	writeServiceError(w, core.ErrTaskNotFound)
	return core.Task{}, core.Profile{}, false
}

func (s *server) lesson(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	task, p, ok := s.taskForContent(w, r, user)
	if !ok {
		return
	}
	if task.Type == core.TaskQuiz {
		writeError(w, http.StatusBadRequest, "invalid_input", "quiz tasks serve questions, not lessons", nil)
		return
	}
	body := s.deps.Content.Lesson(r.Context(), task.Title, task.Type, task.Skill, p.Level)
	writeJSON(w, map[string]any{"task_id": task.ID, "content": body})
}

func (s *server) questions(w http.ResponseWriter, r *http.Request) {
	user, ok := pathUser(w, r)
	if !ok {
		return
	}
	task, p, ok := s.taskForContent(w, r, user)
	if !ok {
		return
	}
	if task.Type != core.TaskQuiz {
		writeError(w, http.StatusBadRequest, "invalid_input", "only quiz tasks serve questions", nil)
		return
	}
	questions := s.deps.Content.Questions(r.Context(), task.Title, task.Skill, p.Level)
	writeJSON(w, map[string]any{"task_id": task.ID, "questions": questions})
}

func (s *server) leaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_n", "n must be a positive integer", nil)
			return
		}
		if v > 100 {
			v = 100
		}
		n = v
	}
	writeJSON(w, map[string]any{"entries": s.deps.Board.TopN(n)})
}

// Helpers

func pathUser(w http.ResponseWriter, r *http.Request) (core.UserID, bool) {
	user, err := core.NormalizeUserID(core.UserID(r.PathValue("id")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), nil)
		return "", false
	}
	return user, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrTaskCompleted):
		writeError(w, http.StatusConflict, "task_completed", err.Error(), nil)
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	}
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAPIKeyAuth enforces a shared API key list.
func withAPIKeyAuth(next http.Handler, apiKeys []string) http.Handler {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key", nil)
			return
		}
		if _, ok := allowed[key]; !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return ""
}

// clientKey uses API key if present, otherwise remote IP.
func clientKey(r *http.Request) string {
	if key := extractAPIKey(r); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
