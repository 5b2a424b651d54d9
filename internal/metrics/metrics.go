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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordLoginSuccess(method string)
	RecordLoginFailure(method string)
	RecordTagsReconciled(added, removed int)
	RecordReconcileFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	loginSuccess     *prometheus.CounterVec
	loginFail        *prometheus.CounterVec
	tagLinksAdded    prometheus.Counter
	tagLinksRemoved  prometheus.Counter
	reconcileFail    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campushub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campushub_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campushub_login_success_total",
			Help: "ログイン成功の合計数（認証方式別）",
		}, []string{"method"}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campushub_login_fail_total",
			Help: "ログイン失敗の合計数（認証方式別）",
		}, []string{"method"}),
		tagLinksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campushub_tag_links_added_total",
			Help: "タグ関連付けの追加リンク合計数",
		}),
		tagLinksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campushub_tag_links_removed_total",
			Help: "タグ関連付けの削除リンク合計数",
		}),
		reconcileFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campushub_tag_reconcile_fail_total",
			Help: "タグ関連付けの更新失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.loginSuccess,
		c.loginFail,
		c.tagLinksAdded,
		c.tagLinksRemoved,
		c.reconcileFail,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess はログイン成功を認証方式（token/session）別に記録する。
func (c *Collector) RecordLoginSuccess(method string) {
	c.loginSuccess.WithLabelValues(method).Inc()
}

// RecordLoginFailure はログイン失敗を認証方式（token/session）別に記録する。
func (c *Collector) RecordLoginFailure(method string) {
	c.loginFail.WithLabelValues(method).Inc()
}

// RecordTagsReconciled はタグ関連付け更新で適用されたリンク数を記録する。
func (c *Collector) RecordTagsReconciled(added, removed int) {
	c.tagLinksAdded.Add(float64(added))
	c.tagLinksRemoved.Add(float64(removed))
}

// RecordReconcileFailure はタグ関連付け更新の失敗を記録する。
func (c *Collector) RecordReconcileFailure() {
	c.reconcileFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
