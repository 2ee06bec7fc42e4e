// Package metrics 注册 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staff_attendance"

var (
	// HTTPRequests 按路由模板、方法、状态码计数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP 请求总数",
	}, []string{"method", "route", "status"})

	// HTTPDuration 请求耗时分布
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AttendanceMarks 考勤标记次数（按状态）
	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_marks_total",
		Help:      "考勤标记次数",
	}, []string{"status"})

	// LeaveDecisions 请假审批结果计数
	LeaveDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leave_decisions_total",
		Help:      "请假审批次数",
	}, []string{"decision"})

	// CvUploads 简历上传次数
	CvUploads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cv_uploads_total",
		Help:      "简历上传次数",
	})

	// CacheResults 统计缓存命中情况
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "统计缓存读取结果",
	}, []string{"result"})
)
