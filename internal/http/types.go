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

type Server struct {
	Store          club.ClubStore
	Lifecycle      *lifecycle.Manager
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
