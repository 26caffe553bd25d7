// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
	RecordLogin(loginMethod string)
	RecordContentWrite(contentType string, operation string)
	RecordDegradedStart()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   prometheus.Histogram
	logins        *prometheus.CounterVec
	contentWrites *prometheus.CounterVec
	degradedStart prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpsite_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "corpsite_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpsite_logins_total",
			Help: "ログイン方法別のログイン成功数",
		}, []string{"login_method"}),
		contentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpsite_content_writes_total",
			Help: "コンテンツ種別・操作別の管理系書き込み数",
		}, []string{"content_type", "operation"}),
		degradedStart: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpsite_degraded_starts_total",
			Help: "データベース未接続（縮退モード）での起動回数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.logins,
		c.contentWrites,
		c.degradedStart,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果とレイテンシを記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin(loginMethod string) {
	c.logins.WithLabelValues(loginMethod).Inc()
}

// RecordContentWrite は管理系の書き込み操作を記録する。
// contentTypeはnews/job_position、operationはcreate/update/delete。
func (c *Collector) RecordContentWrite(contentType string, operation string) {
	c.contentWrites.WithLabelValues(contentType, operation).Inc()
}

// RecordDegradedStart はDB未接続（縮退モード）での起動を記録する。
func (c *Collector) RecordDegradedStart() {
	c.degradedStart.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
