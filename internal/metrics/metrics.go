package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metrosocial_posts_created_total",
		Help: "Posts and replies accepted by the store.",
	})

	EventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metrosocial_events_broadcast_total",
		Help: "Feed events fanned out to stream subscribers.",
	})
)
