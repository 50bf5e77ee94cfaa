package herdgate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/herdtrack/herdgate/credstore"
)

// fakeAPI is a scriptable AuthAPI. Zero value answers every call with
// success and an empty profile.
type fakeAPI struct {
	mu sync.Mutex

	exchangeToken string
	exchangeErr   error
	profile       *UserProfile
	profileErr    error
	registerErr   error

	exchangeCalls int
	profileCalls  int
	registerCalls int
}

func (f *fakeAPI) ExchangeCredentials(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return f.exchangeToken, nil
}

func (f *fakeAPI) CurrentUser(_ context.Context) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return &UserProfile{}, nil
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAPI) Register(_ context.Context, _ RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	return f.registerErr
}

func (f *fakeAPI) calls() (exchange, profile, register int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls, f.profileCalls, f.registerCalls
}

// detailErr mimics the API client's normalized error shape.
type detailErr struct {
	detail string
}

func (e *detailErr) Error() string       { return e.detail }
func (e *detailErr) ErrorDetail() string { return e.detail }

func newTestEngine(t *testing.T, api *fakeAPI, store credstore.Store) *Engine {
	t.Helper()

	engine, err := New().
		WithCredentialStore(store).
		WithAPIClient(api).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newPreflightEngine(t *testing.T, api *fakeAPI, store credstore.Store) *Engine {
	t.Helper()

	engine, err := New().
		WithCredentialStore(store).
		WithAPIClient(api).
		WithTokenPreflight(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// signedToken returns an HS256 JWT expiring at exp. The engine never checks
// the signature, only the unverified exp claim.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
