package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contact module.
// Tracks mutation counts and store call durations per operation.
type Metrics struct {
	ContactsCreated prometheus.Counter
	ContactsUpdated prometheus.Counter
	ContactsDeleted prometheus.Counter
	ValidationFails *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// New creates a new Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContactsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonebook_contacts_created_total",
			Help: "Total number of contacts created",
		}),
		ContactsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonebook_contacts_updated_total",
			Help: "Total number of contact number updates",
		}),
		ContactsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonebook_contacts_deleted_total",
			Help: "Total number of delete requests processed",
		}),
		ValidationFails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "phonebook_contact_validation_failures_total",
			Help: "Rejected contact writes by problem kind",
		}, []string{"kind"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phonebook_store_operation_duration_seconds",
			Help:    "Duration of record store calls by operation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() { m.ContactsCreated.Inc() }

func (m *Metrics) IncrementUpdated() { m.ContactsUpdated.Inc() }

func (m *Metrics) IncrementDeleted() { m.ContactsDeleted.Inc() }

func (m *Metrics) IncrementValidationFailure(kind string) {
	m.ValidationFails.WithLabelValues(kind).Inc()
}

// ObserveStore records the duration of a store call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(operation string, start time.Time) {
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
