package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted      prometheus.Counter
	TCPBytesReceived prometheus.Counter
	TCPBytesSent     prometheus.Counter
	SlcActive        prometheus.Gauge       // 当前已建立的 SLC 数
	HandshakeTotal   *prometheus.CounterVec // labels: result=ok|failed|timeout
	HfCommandTotal   *prometheus.CounterVec // labels: name（AT 命令名，invalid 表示无法解析）
	AgUpdateTotal    *prometheus.CounterVec // labels: type
	ProcedureErrors  *prometheus.CounterVec // labels: marker
	CallActionTotal  *prometheus.CounterVec // labels: type, result=ok|error
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		TCPBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_sent_total",
			Help: "Total bytes written over TCP.",
		}),
		SlcActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slc_active_count",
			Help: "Current number of established service level connections.",
		}),
		HandshakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slc_handshake_total",
			Help: "SLC handshake outcomes.",
		}, []string{"result"}),
		HfCommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hf_command_total",
			Help: "Inbound AT commands by name.",
		}, []string{"name"}),
		AgUpdateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ag_update_total",
			Help: "Outbound AG updates by type.",
		}, []string{"type"}),
		ProcedureErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procedure_error_total",
			Help: "Procedure errors by marker.",
		}, []string{"marker"}),
		CallActionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "call_action_total",
			Help: "Call actions forwarded to the telephony stack.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(
		m.TCPAccepted, m.TCPBytesReceived, m.TCPBytesSent,
		m.SlcActive, m.HandshakeTotal, m.HfCommandTotal,
		m.AgUpdateTotal, m.ProcedureErrors, m.CallActionTotal,
	)
	return m
}
