package http

import (
	"net/http"

	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/config"
	"github.com/mauv0809/padel-rank/internal/lifecycle"
	"github.com/mauv0809/padel-rank/internal/metrics"
	"github.com/mauv0809/padel-rank/internal/notifier"
	"github.com/mauv0809/padel-rank/internal/pubsub"
)

func NewServer(store club.ClubStore, lc *lifecycle.Manager, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Lifecycle:      lc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/matches/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/preview", Chain(s.RatingPreviewHandler(), paramsMiddleware))
	s.Router.Handle("/matches/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("/notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/player-standing", Chain(s.PlayerStandingCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
