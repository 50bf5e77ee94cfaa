package herdgate

import "errors"

var (
	// ErrInvalidCredentials is returned when the credential exchange is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned by operations that require an established session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRegistrationFailed is returned when the registration endpoint rejects the request.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrPostRegisterLogin marks a registration that succeeded but whose automatic
	// login failed; the account exists and the user must sign in manually.
	ErrPostRegisterLogin = errors.New("account created but automatic login failed")
	// ErrProfileUnavailable is returned when the profile fetch after a successful
	// credential exchange fails.
	ErrProfileUnavailable = errors.New("user profile unavailable")
	// ErrEngineNotReady is returned when the engine is used before Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
