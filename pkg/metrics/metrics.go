// Package metrics 提供 Prometheus 指标集合，包含 HTTP、存储与业务指标
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// 存储操作耗时
	StoreOpDuration *prometheus.HistogramVec
	// 种子数据创建次数
	SeedsTotal *prometheus.CounterVec
	// 缓存命中/未命中
	CacheLookupsTotal *prometheus.CounterVec
	// 事件发布结果
	EventsPublishedTotal *prometheus.CounterVec
}

// New 创建指标实例，注册到独立 registry
func New(serviceName string) *Metrics {
	serviceName = strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StoreOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "store_op_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "op"}),
		SeedsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "seeds_total",
			Help:      "Seed documents created on first read",
		}, []string{"entity"}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result",
		}, []string{"cache", "result"}),
		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Subsystem: serviceName,
			Name:      "events_published_total",
			Help:      "Domain events published by type and result",
		}, []string{"event_type", "result"}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreOpDuration,
		m.SeedsTotal,
		m.CacheLookupsTotal,
		m.EventsPublishedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStoreOp 记录存储操作耗时，用于 defer；nil 接收者上的所有记录方法均为空操作
func (m *Metrics) ObserveStoreOp(collection, op string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.StoreOpDuration.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	}
}

// RecordSeed 记录种子数据创建
func (m *Metrics) RecordSeed(entity string) {
	if m == nil {
		return
	}
	m.SeedsTotal.WithLabelValues(entity).Inc()
}

// RecordCacheLookup 记录缓存命中情况
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// RecordEvent 记录事件发布
func (m *Metrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}
