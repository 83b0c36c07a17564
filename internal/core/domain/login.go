package domain

import "fmt"

// LoginState is a step of one authentication attempt
type LoginState string

const (
	LoginStart           LoginState = "start"
	LoginExchanging      LoginState = "exchanging"
	LoginTokenAcquired   LoginState = "token_acquired"
	LoginFetchingProfile LoginState = "fetching_profile"
	LoginFailed          LoginState = "failed"
	LoginAuthenticated   LoginState = "authenticated"
)

var loginTransitions = map[LoginState][]LoginState{
	LoginStart:           {LoginExchanging},
	LoginExchanging:      {LoginFailed, LoginTokenAcquired},
	LoginTokenAcquired:   {LoginFetchingProfile},
	LoginFetchingProfile: {LoginFailed, LoginAuthenticated},
}

// IsTerminal reports whether no further transition is possible
func (s LoginState) IsTerminal() bool {
	return s == LoginFailed || s == LoginAuthenticated
}

// CanTransition reports whether s may move to next
func (s LoginState) CanTransition(next LoginState) bool {
	for _, allowed := range loginTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LoginAttempt tracks the state of a single login
type LoginAttempt struct {
	Flow  string
	state LoginState
}

// NewLoginAttempt starts an attempt for the given flow
func NewLoginAttempt(flow string) *LoginAttempt {
	return &LoginAttempt{Flow: flow, state: LoginStart}
}

// State returns the current state
func (a *LoginAttempt) State() LoginState {
	return a.state
}

// Advance moves the attempt to next, rejecting illegal transitions
func (a *LoginAttempt) Advance(next LoginState) error {
	if !a.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, next)
	}
	a.state = next
	return nil
}
