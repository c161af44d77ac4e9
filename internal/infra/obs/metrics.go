package obs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotelrates/internal/domain/booking"
	"hotelrates/internal/domain/pricing"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	messages        *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	skippedBookings prometheus.Counter
	bookings        *prometheus.CounterVec
	bookingNights   prometheus.Histogram
	bookingRevenue  prometheus.Counter
	catalogChanges  *prometheus.CounterVec
	outboxEvents    *prometheus.CounterVec
}

func NewMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total", Help: "HTTP requests by route and status.", ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds", Help: "HTTP request latency.", ConstLabels: labels,
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bus_messages_total", Help: "Commands and queries dispatched by outcome.", ConstLabels: labels,
		}, []string{"kind", "key", "outcome"}),
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bus_message_duration_seconds", Help: "Command and query handling latency.", ConstLabels: labels,
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "key"}),
		skippedBookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "availability_skipped_bookings_total", Help: "Bookings ignored because their dates could not be resolved.", ConstLabels: labels,
		}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total", Help: "Bookings created per room.", ConstLabels: labels,
		}, []string{"room_id"}),
		bookingNights: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "booking_nights", Help: "Length of booked stays.", ConstLabels: labels,
			Buckets: []float64{1, 2, 3, 5, 7, 14, 28},
		}),
		bookingRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_revenue_total", Help: "Sum of final totals of created bookings.", ConstLabels: labels,
		}),
		catalogChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_changes_total", Help: "Catalog change notifications received.", ConstLabels: labels,
		}, []string{"collection"}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_total", Help: "Outbox deliveries by outcome.", ConstLabels: labels,
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.messages, m.messageDuration,
		m.skippedBookings, m.bookings, m.bookingNights, m.bookingRevenue,
		m.catalogChanges, m.outboxEvents,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// ObserveMessage implements middleware.Observer.
func (m *Metrics) ObserveMessage(kind, key string, took time.Duration, err error) {
	m.messages.WithLabelValues(kind, key, outcome(err)).Inc()
	m.messageDuration.WithLabelValues(kind, key).Observe(took.Seconds())
}

func (m *Metrics) CountSkippedBookings(n int) {
	m.skippedBookings.Add(float64(n))
}

func (m *Metrics) BookingCreated(roomID string, nights int, total float64) {
	m.bookings.WithLabelValues(roomID).Inc()
	m.bookingNights.Observe(float64(nights))
	if total > 0 {
		m.bookingRevenue.Add(total)
	}
}

func (m *Metrics) CatalogChanged(collection string) {
	m.catalogChanges.WithLabelValues(collection).Inc()
}

func (m *Metrics) OutboxDelivered(err error) {
	if err != nil {
		m.outboxEvents.WithLabelValues("failed").Inc()
		return
	}
	m.outboxEvents.WithLabelValues("sent").Inc()
}

// outcome keeps label cardinality bounded.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, booking.ErrRoomUnavailable):
		return "unavailable"
	case errors.Is(err, pricing.ErrInvalidRule), errors.Is(err, pricing.ErrInvalidDateRange):
		return "invalid"
	default:
		return "error"
	}
}
