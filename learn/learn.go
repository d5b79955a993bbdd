// Package learn is the library facade: it assembles a LearnService with
// storage, task generation, and optional event consumers in one call.
package learn

import (
	"context"

	mem "skillsprint/adapters/memory"
	"skillsprint/core"
	"skillsprint/engine"
	"skillsprint/integrations/webhook"
	"skillsprint/leaderboard"
	"skillsprint/planner"
	"skillsprint/realtime"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	storage engine.Storage
	gen     engine.TaskGenerator
	mode    engine.DispatchMode
	hub     *realtime.Hub
	board   leaderboard.Board
	sink    *webhook.Sink
	svcOpts []engine.ServiceOption
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithTaskGenerator sets the daily plan generator.
func WithTaskGenerator(g engine.TaskGenerator) Option { return func(c *config) { c.gen = g } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLeaderboard keeps a points leaderboard updated from engine events.
func WithLeaderboard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// WithWebhook delivers engine events to a webhook sink.
func WithWebhook(s *webhook.Sink) Option { return func(c *config) { c.sink = s } }

// WithServiceOptions passes extra options through to the service constructor.
func WithServiceOptions(opts ...engine.ServiceOption) Option {
	return func(c *config) { c.svcOpts = append(c.svcOpts, opts...) }
}

var allEventTypes = []core.EventType{
	core.EventTasksAssigned,
	core.EventTaskCompleted,
	core.EventPointsAdded,
	core.EventBadgeEarned,
	core.EventStreakChanged,
}

// New builds a configured LearnService. Defaults when not provided:
//   - storage: in-memory
//   - generator: the standard daily planner
//   - dispatch: async
func New(opts ...Option) *engine.LearnService {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = mem.New()
	}
	if cfg.gen == nil {
		cfg.gen = planner.New()
	}

	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewLearnService(cfg.storage, bus, cfg.gen, cfg.svcOpts...)

	if cfg.hub != nil {
		for _, typ := range allEventTypes {
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	if cfg.board != nil {
		leaderboard.Track(bus, cfg.board)
	}
	if cfg.sink != nil {
		for _, typ := range allEventTypes {
			bus.Subscribe(typ, func(_ context.Context, e core.Event) { cfg.sink.OnEvent(e) })
		}
	}
	return svc
}
