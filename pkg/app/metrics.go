package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Stats is a point-in-time copy of the persistence counters.
type Stats struct {
	Saves       uint64 `json:"saves"`
	Writes      uint64 `json:"writes"`
	WriteErrors uint64 `json:"write_errors"`
	Coalesced   uint64 `json:"coalesced"`
}

type metrics struct {
	saves       prometheus.Counter
	writes      prometheus.Counter
	writeErrors prometheus.Counter
	coalesced   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sip",
			Subsystem: "state",
			Name:      name,
			Help:      help,
		})
		if reg == nil {
			return c
		}
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
					return existing
				}
			}
		}
		return c
	}
	return &metrics{
		saves:       counter("saves_total", "State changes accepted by the state manager."),
		writes:      counter("writes_total", "Physical writes attempted against the primary backend."),
		writeErrors: counter("write_errors_total", "Physical writes that failed."),
		coalesced:   counter("coalesced_total", "Saves superseded by a later save before they were written."),
	}
}

func (m *metrics) snapshot() Stats {
	return Stats{
		Saves:       counterValue(m.saves),
		Writes:      counterValue(m.writes),
		WriteErrors: counterValue(m.writeErrors),
		Coalesced:   counterValue(m.coalesced),
	}
}

func counterValue(c prometheus.Counter) uint64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetCounter().GetValue())
}
