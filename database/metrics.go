package database

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Write operations, as used in metric labels.
const (
	opCreate    = "create"
	opSave      = "save"
	opDelete    = "delete"
	opDeleteAll = "delete_all"
	opCustom    = "custom"
	opFlush     = "flush"
)

type managerMetrics struct {
	set   *metrics.Set
	store string
}

func newManagerMetrics(store string, queueLen func() int) *managerMetrics {
	mm := &managerMetrics{
		set:   metrics.NewSet(),
		store: store,
	}
	mm.set.NewGauge(fmt.Sprintf(`portstore_write_queue_length{store=%q}`, store), func() float64 {
		return float64(queueLen())
	})
	return mm
}

func (mm *managerMetrics) write(op string, started time.Time, err error) {
	mm.set.GetOrCreateCounter(fmt.Sprintf(`portstore_writes_total{store=%q,op=%q}`, mm.store, op)).Inc()
	if err != nil {
		mm.set.GetOrCreateCounter(fmt.Sprintf(`portstore_writes_failed_total{store=%q,op=%q}`, mm.store, op)).Inc()
	}
	mm.set.GetOrCreateHistogram(fmt.Sprintf(`portstore_write_duration_seconds{store=%q}`, mm.store)).UpdateDuration(started)
}

func (mm *managerMetrics) queryFailed() {
	mm.set.GetOrCreateCounter(fmt.Sprintf(`portstore_query_errors_total{store=%q}`, mm.store)).Inc()
}

func (mm *managerMetrics) notFound() {
	mm.set.GetOrCreateCounter(fmt.Sprintf(`portstore_not_found_total{store=%q}`, mm.store)).Inc()
}

// WritePrometheus writes the metrics of the manager in Prometheus text format.
func (m *Manager) WritePrometheus(w io.Writer) {
	m.metrics.set.WritePrometheus(w)
}
