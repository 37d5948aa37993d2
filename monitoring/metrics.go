package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	salesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_completed_total",
			Help: "Completed sales per event",
		},
		[]string{"event_id"},
	)

	salesRevenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_revenue_total",
			Help: "Gross revenue from completed sales per event",
		},
		[]string{"event_id"},
	)

	soldOutRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sold_out_rejections_total",
			Help: "Checkout attempts rejected because a ticket type hit its limit",
		},
		[]string{"event_id"},
	)

	webhookReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_replays_total",
			Help: "Gateway callbacks that hit an already settled sale or invite",
		},
	)

	ticketScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_scans_total",
			Help: "Tickets checked in at the door per event",
		},
		[]string{"event_id"},
	)
)

func SaleCompleted(eventID uint, amount float64) {
	label := strconv.FormatUint(uint64(eventID), 10)
	salesCompleted.WithLabelValues(label).Inc()
	salesRevenue.WithLabelValues(label).Add(amount)
}

func SoldOutRejection(eventID uint) {
	soldOutRejections.WithLabelValues(strconv.FormatUint(uint64(eventID), 10)).Inc()
}

func WebhookReplay() {
	webhookReplays.Inc()
}

func TicketScan(eventID uint) {
	ticketScans.WithLabelValues(strconv.FormatUint(uint64(eventID), 10)).Inc()
}
