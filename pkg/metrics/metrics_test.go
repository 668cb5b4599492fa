package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 重复初始化不应panic（promauto重复注册会panic）
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, LoanTransitionsTotal)
	assert.NotNil(t, ReviewStars)
}

func TestRecordLoanTransition(t *testing.T) {
	labels := map[string]string{"from": "available", "to": "checked_out"}
	InitMetrics()
	before := getCounterVecValue(t, LoanTransitionsTotal, labels)

	RecordLoanTransition("available", "checked_out")
	RecordLoanTransition("available", "checked_out")
	RecordLoanTransition("checked_out", "available")

	assert.Equal(t, before+2, getCounterVecValue(t, LoanTransitionsTotal, labels))
}

func TestRecordReview(t *testing.T) {
	InitMetrics()
	beforeCount := getCounterValue(t, ReviewsAddedTotal)
	beforeSamples := getHistogramCount(t, ReviewStars)
	beforeSum := getHistogramSum(t, ReviewStars)

	for _, stars := range []int{3, 4, 5} {
		RecordReview(stars)
	}

	assert.Equal(t, beforeCount+3, getCounterValue(t, ReviewsAddedTotal))
	assert.Equal(t, beforeSamples+3, getHistogramCount(t, ReviewStars))
	assert.InDelta(t, beforeSum+12, getHistogramSum(t, ReviewStars), 1e-9)
}

func TestRecordPublish(t *testing.T) {
	ok := map[string]string{"exchange": "catalog.events", "routing_key": "loan.checked_out", "result": "success"}
	fail := map[string]string{"exchange": "catalog.events", "routing_key": "loan.checked_out", "result": "failure"}
	InitMetrics()
	beforeOK := getCounterVecValue(t, MessagesPublishedTotal, ok)
	beforeFail := getCounterVecValue(t, MessagesPublishedTotal, fail)

	RecordPublish("catalog.events", "loan.checked_out", nil)
	RecordPublish("catalog.events", "loan.checked_out", errors.New("channel closed"))

	assert.Equal(t, beforeOK+1, getCounterVecValue(t, MessagesPublishedTotal, ok))
	assert.Equal(t, beforeFail+1, getCounterVecValue(t, MessagesPublishedTotal, fail))
}

func TestGauge(t *testing.T) {
	InitMetrics()
	before := getGaugeValue(t, HTTPRequestsInProgress)

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	assert.Equal(t, before+1, getGaugeValue(t, HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)
}

func TestHistogramVec(t *testing.T) {
	InitMetrics()
	labels := map[string]string{"method": "GET", "path": "/api/v1/books/:id"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)

	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.1)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "POST", "path": "/api/v1/books"}, 0.2)

	assert.Equal(t, before+2, getHistogramVecCount(t, HTTPRequestDuration, labels))
}

// 辅助函数：读取指标当前值

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	return getCounterValue(t, counterVec.With(labels))
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleCount()
}

func getHistogramSum(t *testing.T, histogram prometheus.Histogram) float64 {
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleSum()
}

func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	require.NoError(t, histogramVec.With(labels).(prometheus.Histogram).Write(&metric))
	return metric.Histogram.GetSampleCount()
}
