package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_commands_total",
			Help: "Commands applied to room engines, by command tag",
		},
		[]string{"cmd"},
	)
	commandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_command_errors_total",
			Help: "Commands rejected by the engine, by command tag",
		},
		[]string{"cmd"},
	)
	sessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "room_sessions_open",
			Help: "Currently registered websocket sessions across all rooms",
		},
	)
	snapshotWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "room_snapshot_writes_total",
			Help: "Snapshots persisted to the durable store",
		},
	)
	snapshotErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "room_snapshot_errors_total",
			Help: "Snapshot writes that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(commandErrors)
	prometheus.MustRegister(sessionsOpen)
	prometheus.MustRegister(snapshotWrites)
	prometheus.MustRegister(snapshotErrors)
}
