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
// ミドルウェアやハンドラー層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordLogin(success bool)
	RecordRateLimited(limitType string)
	RecordEmployeeWrite(op string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	logins         *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	employeeWrites *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ems_http_requests_total",
			Help: "HTTPリクエスト数（メソッド、ルート、ステータスコード別）",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ems_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ems_login_total",
			Help: "ログイン試行数（結果別）",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ems_rate_limited_total",
			Help: "レート制限で拒否したリクエスト数",
		}, []string{"limit_type"}),
		employeeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ems_employee_writes_total",
			Help: "社員レコードの書き込み数（操作別）",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.logins,
		c.rateLimited,
		c.employeeWrites,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
// routeにはパスパラメータを含まないルートパターンを渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// RecordEmployeeWrite は社員レコードの作成・更新・削除を記録する。
func (c *Collector) RecordEmployeeWrite(op string) {
	c.employeeWrites.WithLabelValues(op).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。
// メトリクスを使わないテストやCLIサブコマンドで使う。
type NopCollector struct{}

func (NopCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NopCollector) RecordLogin(bool)                                     {}
func (NopCollector) RecordRateLimited(string)                             {}
func (NopCollector) RecordEmployeeWrite(string)                           {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
