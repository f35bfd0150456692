package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	dispatches *prometheus.CounterVec
	selections *prometheus.CounterVec
	inbound    *prometheus.CounterVec
	campaigns  *prometheus.CounterVec
	gatherer   prometheus.Gatherer
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_builder_sms_dispatch_total",
			Help: "Outbound SMS dispatch attempts by result.",
		}, []string{"result"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_builder_sender_selection_total",
			Help: "Sender number selections by source.",
		}, []string{"source"}),
		inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_builder_webhook_events_total",
			Help: "Carrier webhook events by kind and outcome.",
		}, []string{"kind", "outcome"}),
		campaigns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_builder_campaign_channel_total",
			Help: "Campaign launch fan-out results by channel and outcome.",
		}, []string{"channel", "outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(m.dispatches, m.selections, m.inbound, m.campaigns)
	return m
}

func (m *Metrics) Dispatch(result string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(result).Inc()
}

func (m *Metrics) Selection(source string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(source).Inc()
}

func (m *Metrics) WebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.inbound.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) CampaignChannel(channel, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.campaigns.WithLabelValues(channel, outcome).Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
