package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts scrape and ingestion outcomes.
type Metrics struct {
	PagesScraped     prometheus.Counter
	RecordsExtracted prometheus.Counter
	RecordsDropped   prometheus.Counter
	RowsInserted     prometheus.Counter
	InsertFailures   prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otodom_pages_scraped_total",
			Help: "Result pages processed",
		}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otodom_records_extracted_total",
			Help: "Listing records normalised from result pages",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otodom_records_dropped_total",
			Help: "Listing candidates dropped by extraction or normalisation",
		}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otodom_rows_inserted_total",
			Help: "Rows committed to the properties table",
		}),
		InsertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otodom_insert_failures_total",
			Help: "Inserts that were rolled back or skipped",
		}),
	}
	reg.MustRegister(m.PagesScraped, m.RecordsExtracted, m.RecordsDropped, m.RowsInserted, m.InsertFailures)
	return m
}

// Serve exposes the gatherer on :port/metrics in the background.
func Serve(port string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go srv.ListenAndServe()
	return srv
}
