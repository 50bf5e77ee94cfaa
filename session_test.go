package herdgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/herdtrack/herdgate/credstore"
)

func TestBootstrapWithoutTokenSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	store := credstore.NewMemory()
	engine := newTestEngine(t, api, store)

	engine.Bootstrap(context.Background())

	state := engine.State()
	if state.Loading {
		t.Fatal("expected loading false after bootstrap")
	}
	if state.Authenticated || state.User != nil {
		t.Fatal("expected logged-out state")
	}

	if _, profileCalls, _ := api.calls(); profileCalls != 0 {
		t.Fatalf("expected no profile fetch without a token, got %d calls", profileCalls)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricBootstrapSkipped] != 1 {
		t.Fatalf("expected bootstrap skipped counter 1, got %d", snap.Counters[MetricBootstrapSkipped])
	}
}

func TestBootstrapRejectedTokenClearsStore(t *testing.T) {
	api := &fakeAPI{profileErr: &detailErr{detail: "token expired"}}
	store := credstore.NewMemory()
	store.Save("stale-token")
	engine := newTestEngine(t, api, store)

	engine.Bootstrap(context.Background())

	state := engine.State()
	if state.Loading || state.Authenticated {
		t.Fatal("expected resolved logged-out state")
	}
	if _, ok := store.Read(); ok {
		t.Fatal("expected rejected token cleared from store")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricBootstrapRejected] != 1 {
		t.Fatalf("expected bootstrap rejected counter 1, got %d", snap.Counters[MetricBootstrapRejected])
	}
}

func TestBootstrapEstablishesSession(t *testing.T) {
	api := &fakeAPI{
		profile: &UserProfile{ID: "u1", Name: "Vera", Email: "vera@farm.example", IsTechnical: true},
	}
	store := credstore.NewMemory()
	store.Save("valid-token")
	engine := newTestEngine(t, api, store)

	engine.Bootstrap(context.Background())

	state := engine.State()
	if !state.Authenticated || state.User == nil {
		t.Fatal("expected authenticated state")
	}
	if state.User.Role != RoleTechnical {
		t.Fatalf("expected resolved role technical, got %v", state.User.Role)
	}
	if tok, ok := store.Read(); !ok || tok != "valid-token" {
		t.Fatal("expected token untouched after successful bootstrap")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionEstablished] != 1 {
		t.Fatalf("expected session established counter 1, got %d", snap.Counters[MetricSessionEstablished])
	}
}

func TestBootstrapPreflightDropsExpiredTokenLocally(t *testing.T) {
	api := &fakeAPI{}
	store := credstore.NewMemory()
	store.Save(signedToken(t, time.Now().Add(-time.Hour)))
	engine := newPreflightEngine(t, api, store)

	engine.Bootstrap(context.Background())

	if _, profileCalls, _ := api.calls(); profileCalls != 0 {
		t.Fatalf("expected expired token rejected without network, got %d profile calls", profileCalls)
	}
	if _, ok := store.Read(); ok {
		t.Fatal("expected expired token cleared from store")
	}
	if engine.State().Authenticated {
		t.Fatal("expected logged-out state")
	}
}

func TestBootstrapPreflightKeepsNearExpiryToken(t *testing.T) {
	api := &fakeAPI{profile: &UserProfile{ID: "u1"}}
	store := credstore.NewMemory()
	// Inside the default leeway window; the backend gets the final say.
	store.Save(signedToken(t, time.Now().Add(-5*time.Second)))
	engine := newPreflightEngine(t, api, store)

	engine.Bootstrap(context.Background())

	if _, profileCalls, _ := api.calls(); profileCalls != 1 {
		t.Fatalf("expected near-expiry token sent to backend, got %d profile calls", profileCalls)
	}
	if !engine.State().Authenticated {
		t.Fatal("expected session established when backend accepts the token")
	}
}

func TestBootstrapPreflightIgnoresOpaqueToken(t *testing.T) {
	api := &fakeAPI{profile: &UserProfile{ID: "u1"}}
	store := credstore.NewMemory()
	store.Save("opaque-session-token")
	engine := newPreflightEngine(t, api, store)

	engine.Bootstrap(context.Background())

	if _, profileCalls, _ := api.calls(); profileCalls != 1 {
		t.Fatalf("expected opaque token sent to backend, got %d profile calls", profileCalls)
	}
	if !engine.State().Authenticated {
		t.Fatal("expected session established")
	}
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "fresh-token",
		profile:       &UserProfile{ID: "u1", Name: "Ana", IsProducer: true},
	}
	store := credstore.NewMemory()
	engine := newTestEngine(t, api, store)
	engine.Bootstrap(context.Background())

	result := engine.Login(context.Background(), "ana@farm.example", "secret")
	if !result.Success {
		t.Fatalf("expected login success, got message %q err %v", result.Message, result.Err)
	}

	state := engine.State()
	if !state.Authenticated || state.User == nil {
		t.Fatal("expected authenticated state")
	}
	if state.User.Role != RoleProducer {
		t.Fatalf("expected resolved role producer, got %v", state.User.Role)
	}
	if tok, ok := store.Read(); !ok || tok != "fresh-token" {
		t.Fatalf("expected token persisted, got %q ok=%v", tok, ok)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	api := &fakeAPI{exchangeErr: &detailErr{detail: "incorrect email or password"}}
	store := credstore.NewMemory()
	engine := newTestEngine(t, api, store)
	engine.Bootstrap(context.Background())

	result := engine.Login(context.Background(), "ana@farm.example", "wrong")
	if result.Success {
		t.Fatal("expected login failure")
	}
	if result.Message != "incorrect email or password" {
		t.Fatalf("expected backend detail surfaced, got %q", result.Message)
	}
	if !errors.Is(result.Err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", result.Err)
	}

	state := engine.State()
	if state.Loading || state.Authenticated {
		t.Fatal("expected resolved logged-out state")
	}
	if _, ok := store.Read(); ok {
		t.Fatal("expected empty store after failed exchange")
	}
}

func TestLoginFallbackMessageWithoutDetail(t *testing.T) {
	api := &fakeAPI{exchangeErr: errors.New("dial tcp: connection refused")}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	result := engine.Login(context.Background(), "ana@farm.example", "secret")
	if result.Success {
		t.Fatal("expected login failure")
	}
	if result.Message != ErrInvalidCredentials.Error() {
		t.Fatalf("expected sentinel fallback message, got %q", result.Message)
	}
}

func TestLoginProfileFetchFailureClearsToken(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "orphan-token",
		profileErr:    errors.New("profile endpoint unavailable"),
	}
	store := credstore.NewMemory()
	engine := newTestEngine(t, api, store)
	engine.Bootstrap(context.Background())

	result := engine.Login(context.Background(), "ana@farm.example", "secret")
	if result.Success {
		t.Fatal("expected login failure")
	}
	if !errors.Is(result.Err, ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", result.Err)
	}
	if _, ok := store.Read(); ok {
		t.Fatal("expected orphan token cleared from store")
	}
	if engine.State().Authenticated {
		t.Fatal("expected logged-out state")
	}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1"},
	}
	store := credstore.NewMemory()
	engine := newTestEngine(t, api, store)
	engine.Bootstrap(context.Background())
	before := engine.State()

	if result := engine.Login(context.Background(), "a@b.c", "pw"); !result.Success {
		t.Fatalf("login failed: %v", result.Err)
	}
	engine.Logout()

	after := engine.State()
	if after.Loading != before.Loading || after.Authenticated != before.Authenticated {
		t.Fatalf("expected state restored to pre-login, got %+v", after)
	}
	if after.User != nil {
		t.Fatal("expected nil user after logout")
	}
	if _, ok := store.Read(); ok {
		t.Fatal("expected empty store after logout")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionCleared] != 1 {
		t.Fatalf("expected session cleared counter 1, got %d", snap.Counters[MetricSessionCleared])
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	engine := newTestEngine(t, &fakeAPI{}, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	engine.Logout()
	engine.Logout()

	if engine.State().Authenticated {
		t.Fatal("expected logged-out state")
	}
	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionCleared] != 0 {
		t.Fatalf("expected no session cleared without a session, got %d", snap.Counters[MetricSessionCleared])
	}
}

func TestRegisterSuccessLogsIn(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u2", Name: "New"},
	}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	result := engine.Register(context.Background(), RegisterRequest{
		Name:     "New",
		Email:    "new@farm.example",
		Password: "pw",
	})
	if !result.Success {
		t.Fatalf("expected register+login success, got %v", result.Err)
	}
	if !engine.State().Authenticated {
		t.Fatal("expected authenticated state")
	}

	exchange, _, register := api.calls()
	if register != 1 || exchange != 1 {
		t.Fatalf("expected one register and one exchange call, got %d/%d", register, exchange)
	}
}

func TestRegisterFailureSkipsLogin(t *testing.T) {
	api := &fakeAPI{registerErr: &detailErr{detail: "email already registered"}}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	result := engine.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "pw"})
	if result.Success {
		t.Fatal("expected register failure")
	}
	if !errors.Is(result.Err, ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", result.Err)
	}
	if result.Message != "email already registered" {
		t.Fatalf("expected backend detail surfaced, got %q", result.Message)
	}

	if exchange, _, _ := api.calls(); exchange != 0 {
		t.Fatalf("expected no login attempt after failed registration, got %d calls", exchange)
	}
}

func TestRegisterSucceedsButLoginFails(t *testing.T) {
	api := &fakeAPI{exchangeErr: errors.New("service restarting")}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	result := engine.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "pw"})
	if result.Success {
		t.Fatal("expected overall failure")
	}
	if !errors.Is(result.Err, ErrPostRegisterLogin) {
		t.Fatalf("expected ErrPostRegisterLogin, got %v", result.Err)
	}
	if result.Message != "account created, please sign in manually" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if engine.State().Authenticated {
		t.Fatal("expected logged-out state")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("expected register success counter 1, got %d", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("expected login failure counter 1, got %d", snap.Counters[MetricLoginFailure])
	}
}

func TestUpdateUserMergesPatch(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1", Name: "Ana", Email: "ana@farm.example"},
	}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())
	engine.Login(context.Background(), "ana@farm.example", "pw")

	name := "Ana Silva"
	engine.UpdateUser(UserPatch{Name: &name})

	state := engine.State()
	if state.User.Name != "Ana Silva" {
		t.Fatalf("expected patched name, got %q", state.User.Name)
	}
	if state.User.Email != "ana@farm.example" {
		t.Fatalf("expected email untouched, got %q", state.User.Email)
	}
	if !state.Authenticated {
		t.Fatal("expected authenticated bit unchanged")
	}
}

func TestUpdateUserNoOpWhenLoggedOut(t *testing.T) {
	engine := newTestEngine(t, &fakeAPI{}, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	name := "nobody"
	engine.UpdateUser(UserPatch{Name: &name})

	if engine.State().User != nil {
		t.Fatal("expected no user created by patch")
	}
	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricProfilePatched] != 0 {
		t.Fatalf("expected no patch counter increment, got %d", snap.Counters[MetricProfilePatched])
	}
}

func TestRequireUser(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1"},
	}
	engine := newTestEngine(t, api, credstore.NewMemory())

	if _, err := engine.RequireUser(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated while loading, got %v", err)
	}

	engine.Bootstrap(context.Background())
	if _, err := engine.RequireUser(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated when logged out, got %v", err)
	}

	engine.Login(context.Background(), "a@b.c", "pw")
	user, err := engine.RequireUser()
	if err != nil {
		t.Fatalf("RequireUser failed: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestOnChangeNotifiesAndUnregisters(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1"},
	}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())

	var states []SessionState
	unregister := engine.OnChange(func(s SessionState) {
		states = append(states, s)
	})

	engine.Login(context.Background(), "a@b.c", "pw")

	if len(states) < 2 {
		t.Fatalf("expected loading and established transitions, got %d", len(states))
	}
	if !states[0].Loading {
		t.Fatal("expected first transition to set loading")
	}
	last := states[len(states)-1]
	if !last.Authenticated || last.Loading {
		t.Fatalf("expected final transition authenticated and settled, got %+v", last)
	}

	unregister()
	seen := len(states)
	engine.Logout()
	if len(states) != seen {
		t.Fatal("expected no callbacks after unregister")
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1", Name: "Ana"},
	}
	engine := newTestEngine(t, api, credstore.NewMemory())
	engine.Bootstrap(context.Background())
	engine.Login(context.Background(), "a@b.c", "pw")

	snap := engine.State()
	snap.User.Name = "mutated"

	if engine.State().User.Name != "Ana" {
		t.Fatal("expected engine state unaffected by snapshot mutation")
	}
}

func TestEngineEmitsLifecycleEvents(t *testing.T) {
	sink := NewChannelSink(16)
	api := &fakeAPI{
		exchangeToken: "tok",
		profile:       &UserProfile{ID: "u1"},
	}

	engine, err := New().
		WithCredentialStore(credstore.NewMemory()).
		WithAPIClient(api).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	engine.Bootstrap(context.Background())
	engine.Login(context.Background(), "a@b.c", "pw")
	engine.Close()

	types := map[string]bool{}
	for {
		select {
		case event := <-sink.Events():
			types[event.EventType] = true
		default:
			if !types["bootstrap_skipped"] || !types["login_success"] {
				t.Fatalf("expected bootstrap and login events, got %v", types)
			}
			return
		}
	}
}
