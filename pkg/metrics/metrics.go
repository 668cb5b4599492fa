// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP：请求数、耗时、处理中的请求数
//   - 馆藏业务：副本创建、借阅状态流转、书评数量与评分分布、权限拒绝
//   - 消息队列：借阅事件发布数
//
// 命名规范：
//   - Counter以_total结尾
//   - Histogram以单位结尾（_seconds）或直接使用业务量（review_stars）
//   - 标签只使用有限取值（method、status、from/to），不要用user_id、book_id
//
// 使用示例：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordLoanTransition("available", "checked_out")
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 馆藏业务指标

	// InstancesCreatedTotal 新增馆藏副本数（Counter）
	InstancesCreatedTotal prometheus.Counter

	// LoanTransitionsTotal 副本状态流转次数（Counter）
	// 标签：from、to（available/reserved/checked_out/unavailable）
	LoanTransitionsTotal *prometheus.CounterVec

	// LoanConflictsTotal 并发修改导致的状态冲突次数（Counter）
	LoanConflictsTotal prometheus.Counter

	// ReviewsAddedTotal 书评总数（Counter）
	ReviewsAddedTotal prometheus.Counter

	// ReviewStars 书评星级分布（Histogram）
	ReviewStars prometheus.Histogram

	// PermissionDeniedTotal 能力校验失败次数（Counter）
	// 标签：capability
	PermissionDeniedTotal *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标（可重复调用，只注册一次）
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	InstancesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_instances_created_total",
			Help: "新增馆藏副本总数",
		},
	)

	LoanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loan_transitions_total",
			Help: "副本状态流转次数",
		},
		[]string{"from", "to"},
	)

	LoanConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_loan_conflicts_total",
			Help: "副本状态并发修改冲突次数",
		},
	)

	ReviewsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_reviews_added_total",
			Help: "书评总数",
		},
	)

	ReviewStars = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_review_stars",
			Help:    "书评星级分布",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	PermissionDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_permission_denied_total",
			Help: "能力校验失败次数",
		},
		[]string{"capability"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// =========================================
// 业务埋点（内部保证已初始化）
// =========================================

// RecordLoanTransition 记录一次副本状态流转
func RecordLoanTransition(from, to string) {
	InitMetrics()
	LoanTransitionsTotal.With(prometheus.Labels{"from": from, "to": to}).Inc()
}

// RecordLoanConflict 记录一次状态冲突
func RecordLoanConflict() {
	InitMetrics()
	LoanConflictsTotal.Inc()
}

// RecordInstanceCreated 记录新增副本
func RecordInstanceCreated() {
	InitMetrics()
	InstancesCreatedTotal.Inc()
}

// RecordReview 记录新增书评及其星级
func RecordReview(stars int) {
	InitMetrics()
	ReviewsAddedTotal.Inc()
	ReviewStars.Observe(float64(stars))
}

// RecordPermissionDenied 记录能力校验失败
func RecordPermissionDenied(capability string) {
	InitMetrics()
	PermissionDeniedTotal.With(prometheus.Labels{"capability": capability}).Inc()
}

// RecordPublish 记录消息发布结果
func RecordPublish(exchange, routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublishedTotal.With(prometheus.Labels{
		"exchange":    exchange,
		"routing_key": routingKey,
		"result":      result,
	}).Inc()
}

// =========================================
// 通用辅助函数
// =========================================

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
