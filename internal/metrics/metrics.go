// Package metrics exposes per-run counters in the Prometheus text format so a
// node_exporter textfile collector can alert on stale or shrinking rule sets.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Run collects the metrics of one generation run on a private registry.
type Run struct {
	registry *prometheus.Registry
	provider string

	records       prometheus.Gauge
	rules         *prometheus.GaugeVec
	rejected      prometheus.Gauge
	fetchDuration prometheus.Gauge
	lastSuccess   prometheus.Gauge
	failures      *prometheus.CounterVec
}

// NewRun creates and registers the run metrics for provider.
func NewRun(provider string) *Run {
	labels := prometheus.Labels{"provider": provider}
	r := &Run{
		registry: prometheus.NewRegistry(),
		provider: provider,
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cloudrules_records",
			Help:        "Endpoint records fetched by the last run that reached the feed",
			ConstLabels: labels,
		}),
		rules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "cloudrules_rules",
			Help:        "Rules extracted by the last run that reached the feed, by target kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		rejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cloudrules_targets_rejected",
			Help:        "Targets skipped in the last run (non-standard wildcards, blank entries)",
			ConstLabels: labels,
		}),
		fetchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cloudrules_fetch_duration_seconds",
			Help:        "Duration of the endpoint fetch in the last run",
			ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cloudrules_last_success_timestamp_seconds",
			Help:        "Unix time of the last run that wrote a rule file",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cloudrules_failures_total",
			Help:        "Failed runs since the metrics file was created, by stage",
			ConstLabels: labels,
		}, []string{"stage"}),
	}

	r.registry.MustRegister(r.records, r.rules, r.rejected, r.fetchDuration, r.lastSuccess, r.failures)
	return r
}

// Registry returns the registry holding the run metrics.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFetch records the fetch duration and the number of records.
func (r *Run) ObserveFetch(d time.Duration, records int) {
	r.fetchDuration.Set(d.Seconds())
	r.records.Set(float64(records))
}

// ObserveRules records rule counts by kind and the number of rejected targets.
func (r *Run) ObserveRules(domains, hosts, addresses, rejected int) {
	r.rules.WithLabelValues("domain").Set(float64(domains))
	r.rules.WithLabelValues("host").Set(float64(hosts))
	r.rules.WithLabelValues("address").Set(float64(addresses))
	r.rejected.Set(float64(rejected))
}

// MarkSuccess stamps the time of a successful write.
func (r *Run) MarkSuccess(t time.Time) {
	r.lastSuccess.Set(float64(t.Unix()))
}

// MarkFailure counts a failed run at stage ("fetch", "write").
func (r *Run) MarkFailure(stage string) {
	r.failures.WithLabelValues(stage).Inc()
}

// Restore seeds the run from a textfile written by an earlier run, so a
// failed run keeps the last success time, the failure totals and the
// last observed counts. A missing file is not an error.
func (r *Run) Restore(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading metrics from %s: %w", path, err)
	}
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return fmt.Errorf("parsing metrics from %s: %w", path, err)
	}

	for name, mf := range families {
		for _, m := range mf.GetMetric() {
			if label(m, "provider") != r.provider {
				continue
			}
			switch name {
			case "cloudrules_records":
				r.records.Set(m.GetGauge().GetValue())
			case "cloudrules_rules":
				r.rules.WithLabelValues(label(m, "kind")).Set(m.GetGauge().GetValue())
			case "cloudrules_targets_rejected":
				r.rejected.Set(m.GetGauge().GetValue())
			case "cloudrules_fetch_duration_seconds":
				r.fetchDuration.Set(m.GetGauge().GetValue())
			case "cloudrules_last_success_timestamp_seconds":
				r.lastSuccess.Set(m.GetGauge().GetValue())
			case "cloudrules_failures_total":
				if v := m.GetCounter().GetValue(); v > 0 {
					r.failures.WithLabelValues(label(m, "stage")).Add(v)
				}
			}
		}
	}
	return nil
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// WriteTextfile writes the metrics atomically to path.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
