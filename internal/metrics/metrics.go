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
// サービス層とワーカーから利用する。
type MetricsCollector interface {
	RecordEntryCreated(category string)
	RecordClassificationFallback()
	RecordLinkResolutionFailure()
	RecordSlugFallback()
	RecordDecompositionItems(count int)
	RecordArchiveTransition()
	RecordAssistLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	entriesCreated     *prometheus.CounterVec
	classifyFallback   prometheus.Counter
	linkResolveFail    prometheus.Counter
	slugFallback       prometheus.Counter
	decompositionItems prometheus.Counter
	archiveTransitions prometheus.Counter
	assistLatency      prometheus.Histogram
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		entriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paraman_entries_created_total",
			Help: "カテゴリ別の作成エントリ数",
		}, []string{"category"}),
		classifyFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paraman_classification_fallback_total",
			Help: "分類サービス障害によるResourcesフォールバックの合計数",
		}),
		linkResolveFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paraman_link_resolution_fail_total",
			Help: "リンクメタデータ解決失敗の合計数",
		}),
		slugFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paraman_slug_fallback_total",
			Help: "スラグ生成サービス障害によるローカル生成フォールバックの合計数",
		}),
		decompositionItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paraman_decomposition_items_total",
			Help: "プロジェクト分解で追加されたサブタスクの合計数",
		}),
		archiveTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paraman_archive_transitions_total",
			Help: "プロジェクトのアーカイブ遷移の合計数",
		}),
		assistLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paraman_assist_latency_seconds",
			Help:    "外部コラボレータ呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paraman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.entriesCreated,
		c.classifyFallback,
		c.linkResolveFail,
		c.slugFallback,
		c.decompositionItems,
		c.archiveTransitions,
		c.assistLatency,
		c.httpStatus,
	)

	return c
}

// RecordEntryCreated はエントリ作成をカテゴリラベル付きで記録する。
func (c *Collector) RecordEntryCreated(category string) {
	c.entriesCreated.WithLabelValues(category).Inc()
}

// RecordClassificationFallback は分類フォールバックを記録する。
func (c *Collector) RecordClassificationFallback() {
	c.classifyFallback.Inc()
}

// RecordLinkResolutionFailure はリンクメタデータ解決失敗を記録する。
func (c *Collector) RecordLinkResolutionFailure() {
	c.linkResolveFail.Inc()
}

// RecordSlugFallback はスラグのローカル生成フォールバックを記録する。
func (c *Collector) RecordSlugFallback() {
	c.slugFallback.Inc()
}

// RecordDecompositionItems は分解で追加されたサブタスク数を記録する。
func (c *Collector) RecordDecompositionItems(count int) {
	c.decompositionItems.Add(float64(count))
}

// RecordArchiveTransition はアーカイブ遷移を記録する。
func (c *Collector) RecordArchiveTransition() {
	c.archiveTransitions.Inc()
}

// RecordAssistLatency は外部コラボレータ呼び出しのレイテンシを記録する。
func (c *Collector) RecordAssistLatency(duration time.Duration) {
	c.assistLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
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

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
