package internaldefs

import (
	"github.com/MrEthical07/sessionkit"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricLoginSuccess, Name: "sessionkit_login_success_total", Help: "Successful logins."},
	{ID: sessionkit.MetricLoginFailure, Name: "sessionkit_login_failure_total", Help: "Rejected logins."},
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: sessionkit.MetricRefreshFailure, Name: "sessionkit_refresh_failure_total", Help: "Refresh attempts rejected before rotation."},
	{ID: sessionkit.MetricRefreshRateLimited, Name: "sessionkit_refresh_rate_limited_total", Help: "Refresh attempts over the per-identity window."},
	{ID: sessionkit.MetricRefreshReuseDetected, Name: "sessionkit_refresh_reuse_detected_total", Help: "Stale refresh tokens presented; each ended a session."},
	{ID: sessionkit.MetricRefreshNoSession, Name: "sessionkit_refresh_no_session_total", Help: "Refresh attempts without an active rotation record."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "Completed logouts."},
	{ID: sessionkit.MetricLogoutRejected, Name: "sessionkit_logout_rejected_total", Help: "Logouts rejected for a mismatched or forged token."},
	{ID: sessionkit.MetricAuthorizeSuccess, Name: "sessionkit_authorize_success_total", Help: "Accepted access tokens."},
	{ID: sessionkit.MetricAuthorizeFailure, Name: "sessionkit_authorize_failure_total", Help: "Rejected access tokens."},
	{ID: sessionkit.MetricAuthorizeBlacklisted, Name: "sessionkit_authorize_blacklisted_total", Help: "Access tokens rejected as revoked."},
	{ID: sessionkit.MetricRegisterSuccess, Name: "sessionkit_register_success_total", Help: "Created identities."},
	{ID: sessionkit.MetricRegisterDuplicate, Name: "sessionkit_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: sessionkit.MetricSessionCreated, Name: "sessionkit_session_created_total", Help: "Sessions started by login."},
	{ID: sessionkit.MetricSessionInvalidated, Name: "sessionkit_session_invalidated_total", Help: "Sessions ended by logout or reuse detection."},
	{ID: sessionkit.MetricStoreUnavailable, Name: "sessionkit_store_unavailable_total", Help: "Operations refused because a backing store failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricAuthorizeLatency, Name: "sessionkit_authorize_latency_seconds", Help: "Authorize latency."},
}

// AuditDroppedName is the counter for audit records that never reached the sink.
const AuditDroppedName = "sessionkit_audit_dropped_total"

// HistogramBounds are the upper bounds, in seconds, of the first seven buckets. The
// eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket for exporters without native histograms.
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

// NormalizeBuckets pads or truncates raw snapshot buckets to eight.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
