package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActionsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mesa_actions_appended_total",
		Help: "Actions durably appended to a table history.",
	}, []string{"action_type"})

	AppendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mesa_append_failures_total",
		Help: "Action submissions rejected before broadcast.",
	}, []string{"reason"})

	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mesa_broadcasts_total",
		Help: "Successful fan-outs of a receive_action event.",
	})

	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mesa_deliveries_total",
		Help: "Individual receive_action deliveries handed to a connection.",
	})

	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mesa_deliveries_dropped_total",
		Help: "Per-recipient deliveries dropped (slow or closed connection).",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mesa_connected_clients",
		Help: "Currently connected WebSocket clients.",
	})

	RoomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mesa_room_members",
		Help: "Current members per room.",
	}, []string{"room"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
