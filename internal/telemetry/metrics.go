package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedwarden_passes_total",
		Help: "Total evaluation passes run",
	})
	SyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedwarden_sync_errors_total",
		Help: "Total failed maindata syncs",
	})
	LimitsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedwarden_limits_applied_total",
		Help: "Total setShareLimits calls issued",
	})
	ApplyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedwarden_apply_errors_total",
		Help: "Total failed setShareLimits calls",
	})

	TorrentsSeen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seedwarden_torrents",
		Help: "Torrents seen in the last pass",
	})
	TorrentsMatched = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seedwarden_torrents_matched",
		Help: "Torrents matched by a rule in the last pass",
	})
	RulesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seedwarden_rules",
		Help: "Number of rules in the loaded configuration",
	})
)

func Init() {
	prometheus.MustRegister(
		PassesTotal, SyncErrors, LimitsApplied, ApplyErrors,
		TorrentsSeen, TorrentsMatched, RulesLoaded,
	)
}
