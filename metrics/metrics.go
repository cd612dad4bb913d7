// Package metrics exports stuffer transfer and mapping events to prometheus.
package metrics

import (
	"github.com/dshulyak/stuffer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ stuffer.Metrics = (*Metrics)(nil)

// Metrics implements stuffer.Metrics. A nil *Metrics discards all events.
type Metrics struct {
	transferBytes  *prometheus.CounterVec
	transfers      *prometheus.CounterVec
	shortTransfers *prometheus.CounterVec
	interrupted    *prometheus.CounterVec
	mappedBytes    prometheus.Gauge
}

// New registers collectors with reg. If reg is nil prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		transferBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stuffer_transfer_bytes_total",
				Help: "Total number of bytes moved between buffers and descriptors",
			},
			[]string{"op"}, // "recv", "send"
		),
		transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stuffer_transfers_total",
				Help: "Total number of completed read(2)/write(2) calls",
			},
			[]string{"op"},
		),
		shortTransfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stuffer_short_transfers_total",
				Help: "Total number of transfers that moved fewer bytes than requested",
			},
			[]string{"op"},
		),
		interrupted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stuffer_interrupted_total",
				Help: "Total number of system calls retried after EINTR",
			},
			[]string{"op"},
		),
		mappedBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stuffer_mapped_bytes",
				Help: "Bytes currently mapped by read-only buffers",
			},
		),
	}
}

func (m *Metrics) ObserveTransfer(op string, requested, transferred uint32) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(op).Inc()
	m.transferBytes.WithLabelValues(op).Add(float64(transferred))
	if transferred < requested {
		m.shortTransfers.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) ObserveRetry(op string) {
	if m == nil {
		return
	}
	m.interrupted.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveMapping(bytes int64, mapped bool) {
	if m == nil {
		return
	}
	if mapped {
		m.mappedBytes.Add(float64(bytes))
	} else {
		m.mappedBytes.Sub(float64(bytes))
	}
}
