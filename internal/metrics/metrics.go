// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 認証フロー（auth.MetricsRecorder）とバックエンド呼び出し
// （notes.BackendMetricsRecorder）の両方のインターフェースを満たす。
type Collector struct {
	signInSuccess  prometheus.Counter
	signInFail     *prometheus.CounterVec
	mintFail       prometheus.Counter
	backendReqs    *prometheus.CounterVec
	backendLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signInSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoya_signin_success_total",
			Help: "サインイン成功の合計数",
		}),
		signInFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoya_signin_fail_total",
			Help: "サインイン失敗の合計数（失敗段階別）",
		}, []string{"reason"}),
		mintFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoya_token_mint_fail_total",
			Help: "アプリケーショントークンのミント失敗の合計数",
		}),
		backendReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoya_backend_requests_total",
			Help: "ノートバックエンドへのリクエスト数（メソッド・ステータス別）",
		}, []string{"method", "status_code"}),
		backendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memoya_backend_latency_seconds",
			Help:    "ノートバックエンド呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signInSuccess,
		c.signInFail,
		c.mintFail,
		c.backendReqs,
		c.backendLatency,
	)

	return c
}

// RecordSignInSuccess はサインイン成功を記録する。
func (c *Collector) RecordSignInSuccess() {
	c.signInSuccess.Inc()
}

// RecordSignInFailure はサインイン失敗を失敗段階とともに記録する。
func (c *Collector) RecordSignInFailure(reason string) {
	c.signInFail.WithLabelValues(reason).Inc()
}

// RecordMintFailure はトークンミント失敗を記録する。
func (c *Collector) RecordMintFailure() {
	c.mintFail.Inc()
}

// RecordBackendRequest はバックエンド呼び出しの結果を記録する。
func (c *Collector) RecordBackendRequest(method string, statusCode int) {
	c.backendReqs.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordBackendLatency はバックエンド呼び出しのレイテンシを記録する。
func (c *Collector) RecordBackendLatency(duration time.Duration) {
	c.backendLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
