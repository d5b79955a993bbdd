// Command demo-server runs a self-contained instance backed by in-memory
// storage, suitable for trying out the API locally.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"skillsprint/api/httpapi"
	"skillsprint/engine"
	"skillsprint/leaderboard"
	"skillsprint/learn"
	"skillsprint/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()

	svc := learn.New(
		learn.WithRealtime(hub),
		learn.WithLeaderboard(board),
		learn.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	handler := httpapi.NewMux(httpapi.Deps{
		Service: svc,
		Hub:     hub,
		Board:   board,
	}, httpapi.Options{
		PathPrefix:      "/api",
		AllowCORSOrigin: "*",
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", handler); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}
