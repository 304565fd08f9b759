package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccountsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_registered_total",
			Help: "Total number of registered accounts",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	WebsiteLimitsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "website_limits_created_total",
			Help: "Total number of website limits created",
		},
	)

	WebsiteLimitsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "website_limits_deleted_total",
			Help: "Total number of website limits deleted",
		},
	)

	UsageUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_updates_total",
			Help: "Total number of accepted usage updates",
		},
	)

	UsageResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_resets_total",
			Help: "Total number of day-rollover usage resets applied",
		},
	)

	UsageFeedConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "usage_feed_connections",
			Help: "Number of open live usage feed connections",
		},
	)
)
