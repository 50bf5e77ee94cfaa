package internaldefs

import (
	herdgate "github.com/herdtrack/herdgate"
)

// CounterDef pairs a counter metric ID with its stable exposition name.
type CounterDef struct {
	ID   herdgate.MetricID
	Name string
	Help string
}

// HistogramDef pairs a histogram metric ID with its stable exposition name.
type HistogramDef struct {
	ID   herdgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the session engine maintains, in exposition order.
var CounterDefs = []CounterDef{
	{ID: herdgate.MetricBootstrapSuccess, Name: "herdgate_bootstrap_success_total", Help: "Bootstraps that restored a session from a stored token."},
	{ID: herdgate.MetricBootstrapSkipped, Name: "herdgate_bootstrap_skipped_total", Help: "Bootstraps resolved logged-out with no stored token."},
	{ID: herdgate.MetricBootstrapRejected, Name: "herdgate_bootstrap_rejected_total", Help: "Bootstraps whose stored token was rejected and cleared."},
	{ID: herdgate.MetricLoginSuccess, Name: "herdgate_login_success_total", Help: "Successful login attempts."},
	{ID: herdgate.MetricLoginFailure, Name: "herdgate_login_failure_total", Help: "Failed login attempts."},
	{ID: herdgate.MetricRegisterSuccess, Name: "herdgate_register_success_total", Help: "Successful account registrations."},
	{ID: herdgate.MetricRegisterFailure, Name: "herdgate_register_failure_total", Help: "Failed account registrations."},
	{ID: herdgate.MetricLogout, Name: "herdgate_logout_total", Help: "Logout operations."},
	{ID: herdgate.MetricProfilePatched, Name: "herdgate_profile_patched_total", Help: "In-memory profile patches applied."},
	{ID: herdgate.MetricSessionEstablished, Name: "herdgate_session_established_total", Help: "Sessions established by bootstrap or login."},
	{ID: herdgate.MetricSessionCleared, Name: "herdgate_session_cleared_total", Help: "Established sessions cleared."},
}

// HistogramDefs lists every latency histogram the session engine maintains.
var HistogramDefs = []HistogramDef{
	{ID: herdgate.MetricAuthLatency, Name: "herdgate_auth_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bucket bounds in Prometheus label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bucket bounds in metric-name-safe form.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative form.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
