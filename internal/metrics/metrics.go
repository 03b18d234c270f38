// Package metrics содержит счётчики Prometheus для жизненного цикла QR-кодов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QRIssued количество выпущенных QR-кодов.
	QRIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visitgate_qrcodes_issued_total",
		Help: "Total number of issued QR codes.",
	})

	// QRScanned количество успешных сканирований.
	QRScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visitgate_qrcodes_scanned_total",
		Help: "Total number of successfully scanned QR codes.",
	})

	// QRExpired количество кодов, помеченных истёкшими развёрткой.
	QRExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visitgate_qrcodes_expired_total",
		Help: "Total number of QR codes expired by the sweep.",
	})

	// ScanRejected количество отклонённых сканирований по причинам.
	ScanRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitgate_scans_rejected_total",
		Help: "Total number of rejected scans by reason.",
	}, []string{"reason"})
)
