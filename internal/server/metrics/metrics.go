// Package metrics collects and exposes Prometheus metrics for account
// deletion and presence.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deletion outcomes used as the outcome label of account_deletions_total.
const (
	OutcomeDeleted   = "deleted"
	OutcomeNotFound  = "not_found"
	OutcomeForbidden = "forbidden"
	OutcomeFailed    = "failed"
)

// Recorder is what services and the presence registry report into.
type Recorder interface {
	RecordDeletion(outcome string)
	RecordOrphanedBlob()
	SetPresence(onlineUsers, connections int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	deletions     *prometheus.CounterVec
	orphanedBlobs prometheus.Counter
	onlineUsers   prometheus.Gauge
	connections   prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_deletions_total",
			Help: "Account deletion requests by outcome.",
		}, []string{"outcome"}),
		orphanedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orphaned_blobs_total",
			Help: "Photo objects left in the store after their rows were deleted.",
		}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presence_online_users",
			Help: "Users with at least one live connection.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presence_connections",
			Help: "Live presence connections across all users.",
		}),
	}

	reg.MustRegister(
		c.deletions,
		c.orphanedBlobs,
		c.onlineUsers,
		c.connections,
	)

	return c
}

func (c *Collector) RecordDeletion(outcome string) {
	c.deletions.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordOrphanedBlob() {
	c.orphanedBlobs.Inc()
}

func (c *Collector) SetPresence(onlineUsers, connections int) {
	c.onlineUsers.Set(float64(onlineUsers))
	c.connections.Set(float64(connections))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordDeletion(string) {}
func (Nop) RecordOrphanedBlob()   {}
func (Nop) SetPresence(int, int)  {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
