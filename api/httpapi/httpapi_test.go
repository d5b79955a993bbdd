package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mem "skillsprint/adapters/memory"
	"skillsprint/core"
	"skillsprint/engine"
	"skillsprint/leaderboard"
	"skillsprint/planner"
)

func newTestService() *engine.LearnService {
	storage := mem.New()
	bus := engine.NewEventBus(engine.DispatchSync)
	gen := planner.New()
	return engine.NewLearnService(storage, bus, gen)
}

func newTestMux(t *testing.T) (http.Handler, *engine.LearnService) {
	t.Helper()
	svc := newTestService()
	handler := NewMux(Deps{Service: svc}, Options{PathPrefix: "/api"})
	return handler, svc
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

const onboardBody = `{
	"email": "alice@example.com",
	"name": "Alice",
	"skills": ["Python", "Data Analysis"],
	"experience_level": "Beginner",
	"daily_minutes": 30
}`

func onboardUser(t *testing.T, handler http.Handler) (string, []map[string]any) {
	t.Helper()
	rec, resp := doJSON(t, handler, http.MethodPost, "/api/users", onboardBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("onboard: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := resp["profile"].(map[string]any)
	id := profile["id"].(string)
	raw := resp["tasks"].([]any)
	tasks := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		tasks = append(tasks, it.(map[string]any))
	}
	return id, tasks
}

func TestOnboardCreatesProfileAndTasks(t *testing.T) {
	handler, _ := newTestMux(t)
	id, tasks := onboardUser(t, handler)
	if id == "" {
		t.Fatal("expected a profile id")
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks for a 30-minute budget, got %d", len(tasks))
	}
}

func TestOnboardValidation(t *testing.T) {
	handler, _ := newTestMux(t)
	rec, _ := doJSON(t, handler, http.MethodPost, "/api/users", `{"name": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProfile(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["name"] != "Alice" {
		t.Fatalf("unexpected profile: %v", resp)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	handler, _ := newTestMux(t)
	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp["code"] != "profile_not_found" {
		t.Fatalf("unexpected error body: %v", resp)
	}
}

func TestHistoryUnknownUserNotFound(t *testing.T) {
	handler, _ := newTestMux(t)
	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/unknown/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp["code"] != "profile_not_found" {
		t.Fatalf("unexpected error body: %v", resp)
	}
}

func TestDailyTasksIdempotentPerDay(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec1, resp1 := doJSON(t, handler, http.MethodGet, "/api/users/"+id+"/tasks", "")
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec1.Code)
	}
	rec2, resp2 := doJSON(t, handler, http.MethodGet, "/api/users/"+id+"/tasks", "")
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
	first := resp1["tasks"].([]any)
	second := resp2["tasks"].([]any)
	if len(first) != len(second) {
		t.Fatalf("repeat fetch changed batch size: %d vs %d", len(first), len(second))
	}
	if first[0].(map[string]any)["id"] != second[0].(map[string]any)["id"] {
		t.Fatal("repeat fetch regenerated tasks")
	}
}

func TestCompleteTaskAndConflict(t *testing.T) {
	handler, _ := newTestMux(t)
	id, tasks := onboardUser(t, handler)
	taskID := tasks[0]["id"].(string)

	rec, resp := doJSON(t, handler, http.MethodPost, "/api/users/"+id+"/tasks/"+taskID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["points_awarded"].(float64) <= 0 {
		t.Fatalf("expected points awarded, got %v", resp["points_awarded"])
	}

	rec2, resp2 := doJSON(t, handler, http.MethodPost, "/api/users/"+id+"/tasks/"+taskID+"/complete", "")
	if rec2.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat completion, got %d", rec2.Code)
	}
	if resp2["code"] != "task_completed" {
		t.Fatalf("unexpected error body: %v", resp2)
	}
}

func TestSubmitQuizScoreValidation(t *testing.T) {
	handler, _ := newTestMux(t)
	id, tasks := onboardUser(t, handler)
	taskID := tasks[0]["id"].(string)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/users/"+id+"/tasks/"+taskID+"/quiz", `{"score": 150}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range score, got %d", rec.Code)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, resp := doJSON(t, handler, http.MethodPatch, "/api/users/"+id+"/settings", `{"name": "Alicia"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["name"] != "Alicia" {
		t.Fatalf("name not updated: %v", resp)
	}
	if resp["daily_minutes"].(float64) != 30 {
		t.Fatalf("untouched field changed: %v", resp)
	}
}

func TestBadgesCatalog(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/"+id+"/badges", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	badges := resp["badges"].([]any)
	if len(badges) != 10 {
		t.Fatalf("expected 10 catalog entries, got %d", len(badges))
	}
}

func TestProgressView(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/"+id+"/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	week := resp["weekly_activity"].([]any)
	if len(week) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(week))
	}
	if _, ok := resp["skill_progress"]; !ok {
		t.Fatal("missing skill_progress")
	}
	if resp["average_quiz_score"].(float64) != 0 {
		t.Fatalf("expected 0 average with no quizzes, got %v", resp["average_quiz_score"])
	}
}

func TestResetRemovesUser(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/users/"+id+"/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec2, _ := doJSON(t, handler, http.MethodGet, "/api/users/"+id, "")
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after reset, got %d", rec2.Code)
	}
}

func TestExportSnapshot(t *testing.T) {
	handler, _ := newTestMux(t)
	id, _ := onboardUser(t, handler)

	rec, resp := doJSON(t, handler, http.MethodGet, "/api/users/"+id+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["version"].(float64) != 1 {
		t.Fatalf("unexpected snapshot version: %v", resp["version"])
	}
	if resp["profile"].(map[string]any)["id"] != id {
		t.Fatal("snapshot profile mismatch")
	}
}

func TestLeaderboardRoute(t *testing.T) {
	svc := newTestService()
	board := leaderboard.NewSkipList()
	defer svc.Subscribe(core.EventPointsAdded, func(_ context.Context, e core.Event) {
		board.Update(e.UserID, e.Total)
	})()
	handler := NewMux(Deps{Service: svc, Board: board}, Options{PathPrefix: "/api"})

	id, tasks := onboardUser(t, handler)
	taskID := tasks[0]["id"].(string)
	rec, _ := doJSON(t, handler, http.MethodPost, "/api/users/"+id+"/tasks/"+taskID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", rec.Code)
	}

	rec2, resp := doJSON(t, handler, http.MethodGet, "/api/leaderboard?n=5", "")
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
	entries := resp["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].(map[string]any)["user_id"] != id {
		t.Fatalf("unexpected leaderboard entry: %v", entries[0])
	}
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestMux(t)
	rec, resp := doJSON(t, handler, http.MethodGet, "/api/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", resp)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	svc := newTestService()
	handler := NewMux(Deps{Service: svc}, Options{
		PathPrefix:      "/api",
		APIKeys:         []string{"secret"},
		AllowCORSOrigin: "*",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
}

func TestRateLimit(t *testing.T) {
	svc := newTestService()
	handler := NewMux(Deps{Service: svc}, Options{
		PathPrefix:       "/api",
		APIKeys:          []string{"k"},
		RateLimitEnabled: true,
		RateLimitRPM:     1,
		RateLimitBurst:   1,
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req1.Header.Set("X-API-Key", "k")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200 first request, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req2.Header.Set("X-API-Key", "k")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec2.Code)
	}
}
