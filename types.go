package herdgate

import (
	"io"

	internalevents "github.com/herdtrack/herdgate/internal/events"
	internalmetrics "github.com/herdtrack/herdgate/internal/metrics"
)

// Role is the single enumerated role resolved for a user at session
// establishment. It replaces the backend's scattered boolean role flags
// (admin/producer/technical) with one value decided exactly once, when the
// profile is fetched.
type Role uint8

const (
	// RoleViewer is the default role when the profile carries no role flag.
	RoleViewer Role = iota
	// RoleProducer marks a farm-owner account.
	RoleProducer
	// RoleTechnical marks a veterinary/technical staff account.
	RoleTechnical
	// RoleAdmin marks an administrator account.
	RoleAdmin
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "producer"
	case RoleTechnical:
		return "technical"
	case RoleAdmin:
		return "admin"
	default:
		return "viewer"
	}
}

// UserProfile is the authenticated user record returned by GET /auth/me.
// Role is resolved from the backend's boolean flags exactly once, at session
// establishment; call sites branch on Role, never on raw flags.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"-"`

	// Raw backend flags, kept only for the one-shot role resolution and for
	// optimistic local patches that round-trip through PUT /auth/me.
	IsAdmin     bool `json:"is_admin,omitempty"`
	IsProducer  bool `json:"is_producer,omitempty"`
	IsTechnical bool `json:"is_technical,omitempty"`
}

// ResolveRole maps the profile's boolean flags to a single [Role]. Highest
// privilege wins when several flags are set.
func (p *UserProfile) ResolveRole() Role {
	switch {
	case p == nil:
		return RoleViewer
	case p.IsAdmin:
		return RoleAdmin
	case p.IsTechnical:
		return RoleTechnical
	case p.IsProducer:
		return RoleProducer
	default:
		return RoleViewer
	}
}

// UserPatch is a partial profile update applied locally by
// [Engine.UpdateUser]. Nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
}

// SessionState is an immutable snapshot of the session owned by [Engine].
//
// Invariant: Authenticated is true iff User is non-nil, which in turn implies
// a token was present in the credential store and validated against the
// backend. Loading is true exactly while an authentication-determining
// operation (bootstrap, login, register) is in flight.
type SessionState struct {
	User          *UserProfile
	Loading       bool
	Authenticated bool
}

// LoginResult is returned by [Engine.Login] and [Engine.Register]. When
// Success is false, Err carries a sentinel from this package and Message a
// human-readable description suitable for inline display.
type LoginResult struct {
	Success bool
	Message string
	Err     error
}

// RegisterRequest is the input for [Engine.Register]. Email and Password are
// required; the remaining fields are forwarded verbatim to the registration
// endpoint.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	IsProducer bool   `json:"is_producer,omitempty"`
}

// Event is a structured session lifecycle record emitted by the engine.
type Event = internalevents.Event

// EventSink receives [Event] values from the engine's event dispatcher.
type EventSink = internalevents.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = internalevents.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = internalevents.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalevents.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalevents.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalevents.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricBootstrapSuccess counts bootstraps that established a session.
	MetricBootstrapSuccess = MetricID(internalmetrics.MetricBootstrapSuccess)
	// MetricBootstrapSkipped counts bootstraps that found no stored token.
	MetricBootstrapSkipped = MetricID(internalmetrics.MetricBootstrapSkipped)
	// MetricBootstrapRejected counts bootstraps whose token the backend rejected.
	MetricBootstrapRejected = MetricID(internalmetrics.MetricBootstrapRejected)
	// MetricLoginSuccess counts successful credential exchanges.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure counts failed credential exchanges.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess = MetricID(internalmetrics.MetricRegisterSuccess)
	// MetricRegisterFailure counts failed registrations.
	MetricRegisterFailure = MetricID(internalmetrics.MetricRegisterFailure)
	// MetricLogout counts logouts.
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricProfilePatched counts optimistic local profile patches.
	MetricProfilePatched = MetricID(internalmetrics.MetricProfilePatched)
	// MetricSessionEstablished counts transitions into the authenticated state.
	MetricSessionEstablished = MetricID(internalmetrics.MetricSessionEstablished)
	// MetricSessionCleared counts transitions out of the authenticated state.
	MetricSessionCleared = MetricID(internalmetrics.MetricSessionCleared)
	// MetricAuthLatency is the latency histogram for authentication calls.
	MetricAuthLatency = MetricID(internalmetrics.MetricAuthLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
