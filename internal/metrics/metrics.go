package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CallResult はプロバイダー呼び出しの結果ラベル
type CallResult string

const (
	CallResultSuccess CallResult = "success"
	CallResultError   CallResult = "error"
)

// PurgeOutcome はパージ要求の結果ラベル
type PurgeOutcome string

const (
	PurgeStarted    PurgeOutcome = "started"
	PurgeNotFound   PurgeOutcome = "not_found"
	PurgeInvalidURL PurgeOutcome = "invalid_url"
	PurgeError      PurgeOutcome = "error"
)

// Recorder はCloudFront操作のPrometheusメトリクスを記録する
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	purges          *prometheus.CounterVec
	indexEntries    prometheus.Gauge
}

// NewRecorder はRecorderを作成する。regがnilの場合は専用のレジストリを作成する
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	r := &Recorder{
		gatherer: reg,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbot_provider_calls_total",
				Help: "Total number of CloudFront API calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbot_provider_call_duration_seconds",
				Help:    "Duration of CloudFront API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		purges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbot_purges_total",
				Help: "Total number of purge requests by outcome",
			},
			[]string{"outcome"},
		),
		indexEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cfbot_index_entries",
				Help: "Number of hostnames in the distribution index",
			},
		),
	}
	reg.MustRegister(r.providerCalls, r.providerLatency, r.purges, r.indexEntries)
	return r
}

// ObserveProviderCall はAPI呼び出し1回分を記録する
func (r *Recorder) ObserveProviderCall(operation string, result CallResult, d time.Duration) {
	if r == nil {
		return
	}
	r.providerCalls.WithLabelValues(operation, string(result)).Inc()
	r.providerLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObservePurge はパージ要求の結果を記録する
func (r *Recorder) ObservePurge(outcome PurgeOutcome) {
	if r == nil {
		return
	}
	r.purges.WithLabelValues(string(outcome)).Inc()
}

// SetIndexEntries はインデックスのホスト名数を設定する
func (r *Recorder) SetIndexEntries(n int) {
	if r == nil {
		return
	}
	r.indexEntries.Set(float64(n))
}

// PurgeCounter は結果ごとのパージカウンターを返す。nilのRecorderでは未登録の0件のカウンターを返す
func (r *Recorder) PurgeCounter(outcome PurgeOutcome) prometheus.Counter {
	if r == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "cfbot_purges_total"})
	}
	return r.purges.WithLabelValues(string(outcome))
}

// Gatherer はテストやエクスポート用にレジストリを返す
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// Handler は /metrics 用のHTTPハンドラーを返す
func (r *Recorder) Handler() http.Handler {
	return r.handler
}
