package herdgate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/herdtrack/herdgate/credstore"
	"github.com/herdtrack/herdgate/token"
)

// AuthAPI is the backend contract the engine establishes sessions against.
// apiclient.Client satisfies it; tests substitute fakes.
//
// Implementations must read the bearer token through the credential store on
// every call rather than caching it, since Logout and Login change the stored
// token between requests.
type AuthAPI interface {
	// ExchangeCredentials performs POST /auth/token and returns the access token.
	ExchangeCredentials(ctx context.Context, email, password string) (string, error)
	// CurrentUser performs GET /auth/me with the stored bearer token.
	CurrentUser(ctx context.Context) (*UserProfile, error)
	// Register performs POST /auth/register.
	Register(ctx context.Context, req RegisterRequest) error
}

// Engine owns the in-memory session: the user profile, the loading flag, and
// the derived authenticated bit. The credential store remains the single
// source of truth for the token; the engine only orchestrates it.
//
// Authentication-determining operations (Bootstrap, Login, Register) are not
// reentrant by contract: the host must not start one while State().Loading is
// true. The engine does not queue or reject overlapping calls; the mutex only
// keeps the snapshot itself consistent under misuse.
type Engine struct {
	config Config
	creds  credstore.Store
	api    AuthAPI

	events  *eventDispatcher
	metrics *Metrics

	mu      sync.Mutex
	user    *UserProfile
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(SessionState)
	nextSub int
}

// Close shuts down the event dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.events != nil {
		e.events.Close()
	}
}

// EventsDropped returns the number of lifecycle events discarded because the
// dispatcher buffer was full.
func (e *Engine) EventsDropped() uint64 {
	if e == nil || e.events == nil {
		return 0
	}
	return e.events.Dropped()
}

// MetricsSnapshot returns a deep copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// State returns an immutable snapshot of the current session.
func (e *Engine) State() SessionState {
	if e == nil {
		return SessionState{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() SessionState {
	state := SessionState{
		Loading:       e.loading,
		Authenticated: e.user != nil,
	}
	if e.user != nil {
		u := *e.user
		state.User = &u
	}
	return state
}

// OnChange registers fn to be called with a fresh snapshot after every
// session transition. The returned function unregisters it. Callbacks run
// synchronously on the mutating goroutine and must not start new session
// operations.
func (e *Engine) OnChange(fn func(SessionState)) func() {
	if e == nil || fn == nil {
		return func() {}
	}

	e.subMu.Lock()
	if e.subs == nil {
		e.subs = make(map[int]func(SessionState))
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.subMu.Lock()
	fns := make([]func(SessionState), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	changed := e.loading != v
	e.loading = v
	e.mu.Unlock()
	if changed {
		e.notify()
	}
}

func (e *Engine) establish(profile *UserProfile) {
	e.mu.Lock()
	e.user = profile
	e.loading = false
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) finishLoggedOut() {
	e.mu.Lock()
	wasAuthed := e.user != nil
	e.user = nil
	e.loading = false
	e.mu.Unlock()

	if wasAuthed {
		e.metricInc(MetricSessionCleared)
	}
	e.notify()
}

// RequireUser returns a copy of the established profile, or
// [ErrNotAuthenticated] when no session exists or one is still resolving.
// Hosts call it before operations that only make sense signed in, such as
// profile edits.
func (e *Engine) RequireUser() (*UserProfile, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading || e.user == nil {
		return nil, ErrNotAuthenticated
	}
	u := *e.user
	return &u, nil
}

// Bootstrap establishes the session from the credential store at process
// start. It is called exactly once, never returns an error outward, and
// always leaves Loading false: an absent token resolves to logged-out with
// no network call; a token the backend rejects (or any transport failure) is
// cleared from the store and likewise resolves to logged-out.
func (e *Engine) Bootstrap(ctx context.Context) {
	if e == nil || e.api == nil || e.creds == nil {
		return
	}

	e.setLoading(true)

	tok, ok := e.creds.Read()
	if !ok || tok == "" {
		e.metricInc(MetricBootstrapSkipped)
		e.finishLoggedOut()
		e.emitEvent(ctx, eventBootstrapSkipped, true, "", nil, nil)
		return
	}

	if e.config.Session.TokenPreflight {
		expired, err := token.Expired(tok, e.config.Session.PreflightLeeway, time.Now())
		if err == nil && expired {
			// The authoritative answer would be a 401 anyway; skip the round-trip.
			e.creds.Clear()
			e.metricInc(MetricBootstrapRejected)
			e.finishLoggedOut()
			e.emitEvent(ctx, eventBootstrapRejected, false, "", nil, func() map[string]string {
				return map[string]string{
					"reason": "token_expired_locally",
				}
			})
			return
		}
	}

	profile, err := e.api.CurrentUser(ctx)
	if err != nil {
		e.creds.Clear()
		e.metricInc(MetricBootstrapRejected)
		e.finishLoggedOut()
		e.emitEvent(ctx, eventBootstrapRejected, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "token_rejected",
			}
		})
		return
	}

	profile.Role = profile.ResolveRole()
	e.establish(profile)
	e.metricInc(MetricBootstrapSuccess)
	e.metricInc(MetricSessionEstablished)
	e.emitEvent(ctx, eventBootstrapSuccess, true, profile.ID, nil, nil)
}

// Login exchanges credentials for a token, persists it, and fetches the user
// profile. The token is persisted only between a successful exchange and a
// successful profile fetch; failure at either step resolves to logged-out
// with an empty store and a human-readable message. Loading is always false
// when Login returns.
func (e *Engine) Login(ctx context.Context, email, password string) LoginResult {
	if e == nil || e.api == nil || e.creds == nil {
		return LoginResult{Success: false, Message: ErrEngineNotReady.Error(), Err: ErrEngineNotReady}
	}

	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthLatency, time.Since(start)) }()
	}

	e.setLoading(true)

	tok, err := e.api.ExchangeCredentials(ctx, email, password)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.finishLoggedOut()
		e.emitEvent(ctx, eventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "credential_exchange",
			}
		})
		return failureResult(ErrInvalidCredentials, err)
	}

	e.creds.Save(tok)

	profile, err := e.api.CurrentUser(ctx)
	if err != nil {
		// A token with no validated profile behind it must not survive.
		e.creds.Clear()
		e.metricInc(MetricLoginFailure)
		e.finishLoggedOut()
		e.emitEvent(ctx, eventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "profile_fetch",
			}
		})
		return failureResult(ErrProfileUnavailable, err)
	}

	profile.Role = profile.ResolveRole()
	e.establish(profile)
	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionEstablished)
	e.emitEvent(ctx, eventLoginSuccess, true, profile.ID, nil, func() map[string]string {
		return map[string]string{
			"identifier": email,
		}
	})

	return LoginResult{Success: true}
}

// Register creates the account and, on success, immediately performs Login
// with the same credentials, returning that result. Registration failure is
// surfaced verbatim without attempting the login step. When registration
// succeeds but the follow-up login fails, the result carries
// [ErrPostRegisterLogin]: the account exists, the user must sign in manually.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) LoginResult {
	if e == nil || e.api == nil || e.creds == nil {
		return LoginResult{Success: false, Message: ErrEngineNotReady.Error(), Err: ErrEngineNotReady}
	}

	e.setLoading(true)

	if err := e.api.Register(ctx, req); err != nil {
		e.metricInc(MetricRegisterFailure)
		e.finishLoggedOut()
		e.emitEvent(ctx, eventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Email,
			}
		})
		return failureResult(ErrRegistrationFailed, err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitEvent(ctx, eventRegisterSuccess, true, "", nil, func() map[string]string {
		return map[string]string{
			"identifier": req.Email,
		}
	})

	result := e.Login(ctx, req.Email, req.Password)
	if !result.Success {
		result.Err = errors.Join(ErrPostRegisterLogin, result.Err)
		result.Message = "account created, please sign in manually"
	}
	return result
}

// Logout clears the credential store and resets the session synchronously.
// It never fails and is safe to call in any state.
func (e *Engine) Logout() {
	if e == nil || e.creds == nil {
		return
	}

	e.creds.Clear()
	e.metricInc(MetricLogout)
	e.finishLoggedOut()
	e.emitEvent(context.Background(), eventLogout, true, "", nil, nil)
}

// UpdateUser merges the patch into the in-memory profile without a network
// round-trip. It never changes the authenticated bit and is a no-op when no
// session is established. Server-side persistence goes through
// apiclient.Client.UpdateCurrentUser separately.
func (e *Engine) UpdateUser(patch UserPatch) {
	if e == nil {
		return
	}

	e.mu.Lock()
	if e.user == nil {
		e.mu.Unlock()
		return
	}
	if patch.Name != nil {
		e.user.Name = *patch.Name
	}
	if patch.Email != nil {
		e.user.Email = *patch.Email
	}
	userID := e.user.ID
	e.mu.Unlock()

	e.metricInc(MetricProfilePatched)
	e.emitEvent(context.Background(), eventProfilePatched, true, userID, nil, nil)
	e.notify()
}

func failureResult(sentinel, cause error) LoginResult {
	msg := humanMessage(cause)
	if msg == "" {
		msg = sentinel.Error()
	}
	return LoginResult{
		Success: false,
		Message: msg,
		Err:     errors.Join(sentinel, cause),
	}
}

// humanMessage extracts the backend's detail string when the cause is a
// normalized API error; transport errors without one fall back to the
// sentinel's text.
func humanMessage(err error) string {
	var detailed interface{ ErrorDetail() string }
	if errors.As(err, &detailed) {
		if d := detailed.ErrorDetail(); d != "" {
			return d
		}
	}
	return ""
}
